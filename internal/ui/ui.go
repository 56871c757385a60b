package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/config"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/dashboard"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/discovery"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/hostinfo"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/report"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/sampler"
)

// Model renders the live dashboard. Sampling and input handling both
// happen in Update, so they never run concurrently.
type Model struct {
	cfg     config.Config
	host    string
	keys    KeyMap
	help    help.Model
	dash    *dashboard.Controller
	read    report.CountReader
	now     func() time.Time
	start   time.Time
	elapsed time.Duration
	stopped time.Time
	err     error
	width   int
	height  int
}

// New seeds the sampler from initial counts taken at start.
func New(cfg config.Config, topo model.Topology, host model.Host, read report.CountReader, initial map[string]uint64, start time.Time) *Model {
	s := sampler.New(topo.Sources(), initial, cfg.Interval, sampler.DefaultWindow)
	s.Threshold = cfg.Threshold
	return &Model{
		cfg:    cfg,
		host:   hostinfo.Describe(host),
		keys:   DefaultKeyMap,
		help:   help.New(),
		dash:   dashboard.New(s),
		read:   read,
		now:    time.Now,
		start:  start,
		width:  120,
		height: 40,
	}
}

// Messages
type tickMsg time.Time

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.dash.SelectPrev()
		case key.Matches(msg, m.keys.Down):
			m.dash.SelectNext()
		case key.Matches(msg, m.keys.Toggle):
			m.dash.Toggle()
		}
	case tickMsg:
		if m.dash.Quitting() {
			return m, nil
		}
		counts, err := m.read()
		if err != nil {
			m.err = fmt.Errorf("read interrupts: %w", err)
			m.stop()
			return m, tea.Quit
		}
		m.elapsed = time.Time(msg).Sub(m.start)
		m.dash.Sampler().Update(counts, m.elapsed)
		return m, m.tickCmd()
	}
	return m, nil
}

// stop ends the run and records when it ended.
func (m *Model) stop() {
	m.dash.Quit()
	if m.stopped.IsZero() {
		m.stopped = m.now()
	}
}

// Err is the counter read failure that ended the run, if any.
func (m *Model) Err() error { return m.err }

// Sampler exposes the collected series for the exit summary.
func (m *Model) Sampler() *sampler.Sampler { return m.dash.Sampler() }

// Elapsed is the time of the last sample relative to the start.
func (m *Model) Elapsed() time.Duration { return m.elapsed }

// RunTime is how long the dashboard ran, up to the moment it stopped,
// or up to now while it is still running.
func (m *Model) RunTime() time.Duration {
	if m.stopped.IsZero() {
		return m.now().Sub(m.start)
	}
	return m.stopped.Sub(m.start)
}

// Controller exposes the dashboard state.
func (m *Model) Controller() *dashboard.Controller { return m.dash }

func (m *Model) View() string {
	title := " Interrupt Monitor "
	if m.cfg.Threshold > 0 {
		title = fmt.Sprintf(" Interrupt Monitor (threshold: %.0f/s) ", m.cfg.Threshold)
	}
	header := titleStyle.Render(title) + " " + subtleStyle.Render(m.host)

	rows := m.dash.Rows()
	tableHeight := len(rows) + 1
	if tableHeight > 15 {
		tableHeight = 15
	}
	chartHeight := m.height - tableHeight - 6
	if chartHeight < 8 {
		chartHeight = 8
	}
	inner := m.width - 4
	if inner < 40 {
		inner = 40
	}

	chart := boxStyle.Render(renderChart(m.chartSeries(), inner, chartHeight,
		dashboard.XBounds(m.elapsed.Seconds()), m.dash.YMax()))
	table := boxStyle.Render(m.renderTable(rows, tableHeight))

	status := " " + m.help.View(m.keys) + subtleStyle.Render(fmt.Sprintf(" | %.0fs %dms #%d",
		m.elapsed.Seconds(), m.cfg.Interval.Milliseconds(), m.dash.Sampler().Samples()))
	if m.err != nil {
		status = errorStyle.Render(" " + m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, table, status)
}

func (m *Model) chartSeries() []series {
	var out []series
	for _, h := range m.dash.Sampler().Series() {
		if !h.Visible {
			continue
		}
		out = append(out, series{
			points: h.Window.Points(),
			color:  colorFor(dashboard.RoleOf(h.Info), h.ColorIndex),
		})
	}
	if m.dash.TotalVisible() {
		out = append(out, series{
			points: m.dash.Sampler().Total().Points(),
			color:  colorFor(dashboard.RoleTotal, 0),
		})
	}
	return out
}

const tableFormat = "%1s %-35s %-15s %-8s %10s %10s %10s"

func (m *Model) renderTable(rows []dashboard.Row, limit int) string {
	lines := []string{headerStyle.Render(fmt.Sprintf(tableFormat, "", "Source", "Type", "IRQ", "Rate", "Avg", "Max"))}

	// Keep the selected row on screen when the table is clipped.
	first := 0
	if visible := limit - 1; len(rows) > visible {
		for i, r := range rows {
			if r.Selected && i >= visible {
				first = i - visible + 1
			}
		}
		rows = rows[first : first+visible]
	}

	for _, r := range rows {
		marker := " "
		if r.Selected {
			marker = ">"
		}
		name, typ, irq := "TOTAL", "", ""
		if !r.Total {
			name = report.DisplayName(r.Info)
			typ = r.Info.DeviceType
			if r.Info.IsController {
				typ = "Controller"
			}
			irq = "IRQ " + r.Info.IRQ
		}
		maxRate := "-"
		if r.Stats.Count > 0 {
			maxRate = fmt.Sprintf("%.1f/s", r.Stats.Max)
		}
		line := fmt.Sprintf(tableFormat, marker, truncate(name, 35), typ, irq,
			fmt.Sprintf("%.1f/s", r.Stats.Latest), fmt.Sprintf("%.1f/s", r.Stats.Average()), maxRate)

		style := lipgloss.NewStyle().Foreground(colorFor(r.Role, r.ColorIndex))
		if !r.Visible {
			style = style.Foreground(hiddenColor)
		}
		if r.Total {
			style = style.Bold(true)
		}
		if r.High {
			style = style.Background(highBg)
		}
		if r.Selected {
			style = style.Reverse(true)
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program in the alternate screen. The
// terminal is restored on every exit path before Run returns.
func Run(cfg config.Config, topo model.Topology, host model.Host, read report.CountReader) (*Model, error) {
	initial, err := read()
	if err != nil {
		return nil, err
	}
	m := New(cfg, topo, host, read, initial, time.Now())
	if len(m.Sampler().Series()) == 0 {
		return nil, discovery.ErrNoSources
	}
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err = prog.Run()
	if m.stopped.IsZero() {
		m.stopped = m.now()
	}
	if err != nil {
		return m, err
	}
	return m, m.err
}
