package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/dashboard"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

const yLabelWidth = 8

// referenceColor draws the flat lines at 0 and ymax that pin the canvas
// scale, since the canvas otherwise scales to its own min and max.
var referenceColor = plot.DimGray

type series struct {
	points []model.Point
	color  lipgloss.Color
}

// chartColor converts an ANSI 256 palette entry for the canvas.
func chartColor(c lipgloss.Color) plot.Color {
	n, err := strconv.Atoi(string(c))
	if err != nil {
		return plot.Default
	}
	return plot.Color(n)
}

// resample maps points onto cols evenly spaced positions across xb,
// interpolating between samples. The result stops at the newest sample,
// and positions before the oldest sample hold its rate. Rates are
// clamped to [0, ymax].
func resample(points []model.Point, xb [2]float64, cols int, ymax float64) []float64 {
	if len(points) == 0 || cols < 2 {
		return nil
	}
	span := xb[1] - xb[0]
	out := make([]float64, 0, cols)
	j := 0
	for c := 0; c < cols; c++ {
		x := xb[0] + span*float64(c)/float64(cols-1)
		if x > points[len(points)-1].Elapsed {
			break
		}
		for j+1 < len(points) && points[j+1].Elapsed < x {
			j++
		}
		var v float64
		switch {
		case x <= points[0].Elapsed:
			v = points[0].Rate
		case j+1 < len(points):
			a, b := points[j], points[j+1]
			frac := 0.0
			if b.Elapsed > a.Elapsed {
				frac = (x - a.Elapsed) / (b.Elapsed - a.Elapsed)
			}
			v = a.Rate + (b.Rate-a.Rate)*frac
		default:
			v = points[j].Rate
		}
		out = append(out, math.Min(math.Max(v, 0), ymax))
	}
	return out
}

// chartData builds the canvas input: the two reference lines first so
// real series draw over them, then one resampled line per series.
func chartData(all []series, xb [2]float64, cols int, ymax float64) ([][]float64, []plot.Color) {
	base := make([]float64, cols)
	ceiling := make([]float64, cols)
	for i := range ceiling {
		ceiling[i] = ymax
	}
	data := [][]float64{base, ceiling}
	colors := []plot.Color{referenceColor, referenceColor}
	for _, s := range all {
		data = append(data, resample(s.points, xb, cols, ymax))
		colors = append(colors, chartColor(s.color))
	}
	return data, colors
}

// labelRow is the canvas row a value lands on, matching the canvas's
// own truncating row math.
func labelRow(v, ymax float64, rows int) int {
	return rows - 1 - int(v/ymax*float64(rows-1))
}

func formatRate(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f/s", v)
	}
	return fmt.Sprintf("%.1f/s", v)
}

// renderChart draws braille line series on a canvas of width x height
// cells (one row reserved for x labels) with y labels at nice steps.
func renderChart(all []series, width, height int, xb [2]float64, ymax float64) string {
	plotWidth := width - yLabelWidth - 1
	plotHeight := height - 1
	if plotWidth < 2 || plotHeight < 2 || ymax <= 0 || xb[1] <= xb[0] {
		return ""
	}

	// One point per braille dot column. A NumDataPoints above the line
	// length keeps the canvas step at one dot.
	cols := plotWidth * 2
	canvas := plot.NewCanvas(plotWidth, plotHeight)
	canvas.ShowAxis = false
	canvas.NumDataPoints = cols + 1
	data, colors := chartData(all, xb, cols, ymax)
	canvas.LineColors = colors
	canvas.Fill(data)

	labels := make(map[int]string)
	for _, y := range dashboard.YLabels(ymax) {
		labels[labelRow(y, ymax, plotHeight)] = formatRate(y)
	}

	var b strings.Builder
	for i, line := range strings.Split(canvas.String(), "\n") {
		fmt.Fprintf(&b, "%*s│%s\n", yLabelWidth, labels[i], line)
	}

	left := fmt.Sprintf("%.0fs", xb[0])
	mid := fmt.Sprintf("%.0fs", (xb[0]+xb[1])/2)
	right := fmt.Sprintf("%.0fs", xb[1])
	gap := plotWidth - len(left) - len(mid) - len(right)
	if gap < 2 {
		gap = 2
	}
	b.WriteString(strings.Repeat(" ", yLabelWidth+1))
	b.WriteString(left + strings.Repeat(" ", gap/2) + mid + strings.Repeat(" ", gap-gap/2) + right)
	return b.String()
}
