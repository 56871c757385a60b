package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	plot "github.com/chriskim06/drawille-go"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/config"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/dashboard"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testTopology() model.Topology {
	return model.Topology{Controllers: []model.I2cController{{
		Name: "i2c_designware.1",
		Bus:  1,
		IRQ:  "27",
		Devices: []model.HidDevice{{
			ACPIName:   "PIXA3854:00",
			DeviceType: "Touchpad",
			GPIOIRQ:    "203",
		}},
	}}}
}

// testModel returns a model whose reader yields the given snapshots.
func testModel(t *testing.T, snapshots ...map[string]uint64) *Model {
	t.Helper()
	i := 0
	read := func() (map[string]uint64, error) {
		if i >= len(snapshots) {
			return nil, errors.New("interrupts vanished")
		}
		s := snapshots[i]
		i++
		return s, nil
	}
	cfg := config.Config{Command: config.CommandTUI, Interval: time.Second, Threshold: 100}
	return New(cfg, testTopology(), model.Host{Hostname: "fw13"}, read,
		map[string]uint64{"27": 0, "203": 0}, testStart)
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestKeyNavigation(t *testing.T) {
	m := testModel(t)
	c := m.Controller()

	m.Update(runeKey('j'))
	if c.Selected() != 1 {
		t.Errorf("after j: selected %d, want 1", c.Selected())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !c.TotalSelected() {
		t.Errorf("after down: selected %d, want TOTAL", c.Selected())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if c.Selected() != 0 {
		t.Errorf("down from TOTAL: selected %d, want 0", c.Selected())
	}
	m.Update(runeKey('k'))
	if !c.TotalSelected() {
		t.Errorf("k from 0: selected %d, want TOTAL", c.Selected())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if c.Selected() != 1 {
		t.Errorf("up: selected %d, want 1", c.Selected())
	}
}

func TestKeyToggle(t *testing.T) {
	m := testModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.Sampler().Series()[0].Visible {
		t.Error("space did not hide the selected series")
	}
}

func TestKeyQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m := testModel(t)
		_, cmd := m.Update(msg)
		if !m.Controller().Quitting() {
			t.Errorf("%s: not quitting", msg)
		}
		if cmd == nil {
			t.Errorf("%s: no quit command", msg)
			continue
		}
		if cmd() != tea.Quit() {
			t.Errorf("%s: command is not tea.Quit", msg)
		}
	}
}

func TestTickSamples(t *testing.T) {
	m := testModel(t,
		map[string]uint64{"27": 50, "203": 200},
		map[string]uint64{"27": 60, "203": 200},
	)
	_, cmd := m.Update(tickMsg(testStart.Add(time.Second)))
	if cmd == nil {
		t.Fatal("tick did not schedule the next tick")
	}
	m.Update(tickMsg(testStart.Add(2 * time.Second)))

	s := m.Sampler()
	if s.Samples() != 2 {
		t.Fatalf("samples: got %d, want 2", s.Samples())
	}
	if got := s.Series()[0].Stats.Latest; got != 10 {
		t.Errorf("controller rate: got %v, want 10", got)
	}
	if got := s.TotalStats().Max; got != 250 {
		t.Errorf("total max: got %v, want 250", got)
	}
	if m.Elapsed() != 2*time.Second {
		t.Errorf("elapsed: got %v, want 2s", m.Elapsed())
	}
}

func TestTickReadErrorQuits(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(tickMsg(testStart.Add(time.Second)))
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "interrupts vanished") {
		t.Errorf("Err = %v", m.Err())
	}
	if cmd == nil {
		t.Fatal("read error did not quit")
	}
	if cmd() != tea.Quit() {
		t.Error("read error command is not tea.Quit")
	}
	if m.Sampler().Samples() != 0 {
		t.Error("failed read recorded a sample")
	}
}

func TestView(t *testing.T) {
	m := testModel(t, map[string]uint64{"27": 30, "203": 500})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tickMsg(testStart.Add(time.Second)))

	view := m.View()
	for _, want := range []string{"threshold: 100/s", "fw13", "i2c_designware.1", "PIXA3854:00", "TOTAL", "IRQ 203", "500.0/s", "#1", "quit", "hide/show"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func brailleCells(line string) int {
	n := 0
	for _, r := range line {
		if r >= 0x2800 && r <= 0x28FF {
			n++
		}
	}
	return n
}

func TestRenderChartDrawsConnectedLine(t *testing.T) {
	s := []series{{
		points: []model.Point{{Elapsed: 0, Rate: 0}, {Elapsed: 60, Rate: 100}},
		color:  "4",
	}}
	out := renderChart(s, 69, 12, [2]float64{0, 60}, 100)
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 11 canvas rows and an x label row", len(lines))
	}
	// Rows 0 and 10 carry the ceiling and baseline; every row between
	// them must be crossed by the rising line.
	for row := 1; row < 10; row++ {
		if brailleCells(lines[row]) == 0 {
			t.Errorf("row %d has no line segment: %q", row, lines[row])
		}
	}
	if !strings.Contains(out, plot.Color(4).String()) {
		t.Error("series drawn without its palette color")
	}
	if !strings.Contains(out, referenceColor.String()) {
		t.Error("reference lines missing")
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "100/s") {
		t.Errorf("top label: %q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[10]), "0/s") {
		t.Errorf("bottom label: %q", lines[10])
	}
	if !strings.Contains(lines[11], "0s") || !strings.Contains(lines[11], "60s") {
		t.Errorf("x labels: %q", lines[11])
	}
}

func TestRenderChartEmptySeries(t *testing.T) {
	out := renderChart(nil, 40, 8, [2]float64{0, 60}, 10)
	lines := strings.Split(out, "\n")
	if brailleCells(lines[0]) == 0 || brailleCells(lines[6]) == 0 {
		t.Error("reference lines not drawn on an empty chart")
	}
	if brailleCells(lines[3]) != 0 {
		t.Errorf("unexpected data in empty chart: %q", lines[3])
	}
}

func TestResample(t *testing.T) {
	points := []model.Point{{Elapsed: 10, Rate: 50}, {Elapsed: 20, Rate: 100}}
	got := resample(points, [2]float64{0, 40}, 5, 1000)
	if fmt.Sprint(got) != "[50 50 100]" {
		t.Errorf("resample = %v, want [50 50 100]", got)
	}

	got = resample(points, [2]float64{10, 20}, 3, 1000)
	if fmt.Sprint(got) != "[50 75 100]" {
		t.Errorf("interpolated = %v, want [50 75 100]", got)
	}

	got = resample([]model.Point{{Elapsed: 0, Rate: 1e6}, {Elapsed: 1, Rate: -1}}, [2]float64{0, 1}, 2, 100)
	if fmt.Sprint(got) != "[100 0]" {
		t.Errorf("clamped = %v, want [100 0]", got)
	}
}

func TestRunTimeUsesQuitMoment(t *testing.T) {
	m := testModel(t, map[string]uint64{"27": 1, "203": 1})
	now := testStart
	m.now = func() time.Time { return now }

	m.Update(tickMsg(testStart.Add(time.Second)))
	now = testStart.Add(1800 * time.Millisecond)
	m.Update(runeKey('q'))
	now = testStart.Add(time.Hour)

	if got := m.RunTime(); got != 1800*time.Millisecond {
		t.Errorf("RunTime = %v, want 1.8s", got)
	}
	if m.Elapsed() != time.Second {
		t.Errorf("Elapsed = %v, want 1s", m.Elapsed())
	}
}

func TestPalette(t *testing.T) {
	if colorFor(dashboard.RoleController, 0) == colorFor(dashboard.RoleDevice, 0) {
		t.Error("controllers and devices share a first color")
	}
	if colorFor(dashboard.RoleController, 4) != colorFor(dashboard.RoleController, 0) {
		t.Error("palette does not cycle")
	}
	if colorFor(dashboard.RoleTotal, 3) != "15" {
		t.Errorf("total color = %q", colorFor(dashboard.RoleTotal, 3))
	}
}
