// Package dashboard is the interactive state over a Sampler: which row
// is selected, which series are drawn, and the chart axis bounds. No
// operation here can fail; it only reads sampled data.
package dashboard

import (
	"math"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/sampler"
)

const (
	// WindowSeconds is the visible width of the time axis.
	WindowSeconds = 60.0
	// MinScale is the smallest y-axis maximum, in interrupts per second.
	MinScale = 10.0
	// Headroom inflates the observed peak before rounding.
	Headroom = 1.1
	// TargetLabels is the approximate number of y-axis steps.
	TargetLabels = 5.0
)

// Role picks the palette a row is drawn from.
type Role int

const (
	RoleController Role = iota
	RoleDevice
	RoleTotal
)

// RoleOf returns the palette role of a source.
func RoleOf(info model.InterruptSourceInfo) Role {
	if info.IsController {
		return RoleController
	}
	return RoleDevice
}

// Controller tracks selection and visibility. The selectable rows are
// the sampler's series followed by one TOTAL row.
type Controller struct {
	s            *sampler.Sampler
	selected     int
	totalVisible bool
	quit         bool
}

// New returns a controller with the first row selected and everything
// visible.
func New(s *sampler.Sampler) *Controller {
	return &Controller{s: s, totalVisible: true}
}

// Sampler returns the underlying sampler.
func (c *Controller) Sampler() *sampler.Sampler { return c.s }

func (c *Controller) rows() int { return len(c.s.Series()) + 1 }

// Selected is the selected row; len(series) is the TOTAL row.
func (c *Controller) Selected() int { return c.selected }

// TotalSelected reports whether the TOTAL row is selected.
func (c *Controller) TotalSelected() bool { return c.selected == len(c.s.Series()) }

// SelectNext moves down, wrapping from TOTAL to the first row.
func (c *Controller) SelectNext() { c.selected = (c.selected + 1) % c.rows() }

// SelectPrev moves up, wrapping from the first row to TOTAL.
func (c *Controller) SelectPrev() {
	if c.selected == 0 {
		c.selected = c.rows() - 1
		return
	}
	c.selected--
}

// Toggle flips visibility of the selected row.
func (c *Controller) Toggle() {
	series := c.s.Series()
	if c.selected < len(series) {
		series[c.selected].Visible = !series[c.selected].Visible
		return
	}
	c.totalVisible = !c.totalVisible
}

// TotalVisible reports whether the TOTAL series is drawn.
func (c *Controller) TotalVisible() bool { return c.totalVisible }

// Quit ends the run.
func (c *Controller) Quit() { c.quit = true }

// Quitting reports whether Quit was called.
func (c *Controller) Quitting() bool { return c.quit }

// YMax is the y-axis upper bound: the peak over visible series (and
// TOTAL when visible) with headroom, at least MinScale, rounded up to
// a nice step.
func (c *Controller) YMax() float64 {
	var peak float64
	for _, h := range c.s.Series() {
		if h.Visible {
			peak = math.Max(peak, h.Window.Max())
		}
	}
	if c.totalVisible {
		peak = math.Max(peak, c.s.Total().Max())
	}
	raw := math.Max(peak*Headroom, MinScale)
	return CeilToStep(raw, NiceStep(raw))
}

// YLabels returns tick values from 0 to ymax in nice steps.
func YLabels(ymax float64) []float64 {
	step := NiceStep(ymax)
	var labels []float64
	for y := 0.0; y <= ymax+step*0.01; y += step {
		labels = append(labels, y)
	}
	return labels
}

// XBounds is the visible time range for the given elapsed seconds. The
// window grows to WindowSeconds before it starts to scroll.
func XBounds(elapsed float64) [2]float64 {
	if elapsed <= WindowSeconds {
		return [2]float64{0, math.Max(WindowSeconds, elapsed)}
	}
	return [2]float64{elapsed - WindowSeconds, elapsed}
}

// NiceStep returns a 1, 2, 5 or 10 multiple of a power of ten close to
// max/TargetLabels, never below it.
func NiceStep(max float64) float64 {
	if max <= 0 {
		return 1
	}
	raw := max / TargetLabels
	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	fraction := raw / magnitude
	var nice float64
	switch {
	case fraction <= 1:
		nice = 1
	case fraction <= 2:
		nice = 2
	case fraction <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * magnitude
}

// CeilToStep rounds value up to a multiple of step.
func CeilToStep(value, step float64) float64 {
	return math.Ceil(value/step) * step
}

// Row is the per-row view handed to the renderer.
type Row struct {
	Info       model.InterruptSourceInfo
	Role       Role
	ColorIndex int
	Stats      sampler.Stats
	Selected   bool
	Visible    bool
	High       bool
	Total      bool
}

// Rows returns one Row per series followed by the TOTAL row.
func (c *Controller) Rows() []Row {
	series := c.s.Series()
	rows := make([]Row, 0, len(series)+1)
	for i, h := range series {
		rows = append(rows, Row{
			Info:       h.Info,
			Role:       RoleOf(h.Info),
			ColorIndex: h.ColorIndex,
			Stats:      h.Stats,
			Selected:   c.selected == i,
			Visible:    h.Visible,
			High:       h.Visible && c.s.High(h),
		})
	}
	rows = append(rows, Row{
		Info:     model.InterruptSourceInfo{Name: "TOTAL"},
		Role:     RoleTotal,
		Stats:    c.s.TotalStats(),
		Selected: c.TotalSelected(),
		Visible:  c.totalVisible,
		Total:    true,
	})
	return rows
}
