// Package report holds the console surfaces: the one-shot topology
// listing, the timed text monitor and the post-dashboard summary.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/config"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/discovery"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/hostinfo"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/sampler"
)

// CountReader returns the current per-IRQ counter totals.
type CountReader func() (map[string]uint64, error)

// List prints the topology tree.
func List(w io.Writer, topo model.Topology, host model.Host) {
	fmt.Fprintf(w, "Host: %s\n\n", hostinfo.Describe(host))
	if len(topo.Controllers) == 0 {
		fmt.Fprintln(w, discovery.ErrNoControllers.Error()+".")
		fmt.Fprintln(w)
		fmt.Fprintln(w, discovery.Hint)
		return
	}

	fmt.Fprint(w, "=== I2C HID Device Topology ===\n\n")
	for _, c := range topo.Controllers {
		irq := ""
		if c.IRQ != "" {
			irq = fmt.Sprintf(" (IRQ %s)", c.IRQ)
		}
		fmt.Fprintf(w, "%s [bus %d]%s\n", c.Name, c.Bus, irq)

		for _, d := range c.Devices {
			devIRQ := "no IRQ"
			if d.GPIOIRQ != "" {
				devIRQ = "IRQ " + d.GPIOIRQ
			}
			fmt.Fprintf(w, "  %s - %s [%04X:%04X] (%s)\n", d.ACPIName, d.DeviceType, d.VendorID, d.ProductID, devIRQ)
			for _, name := range d.InputNames {
				fmt.Fprintf(w, "    - %s\n", name)
			}
			if d.Driver != "" {
				fmt.Fprintf(w, "    driver: %s\n", d.Driver)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Use 'i2cirq tui' for real-time monitoring.")
}

// ListJSON prints the topology as indented JSON.
func ListJSON(w io.Writer, topo model.Topology) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(topo)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const columnWidth = 18

// Monitor samples every cfg.Interval and prints one row per tick until
// cfg.Count ticks were printed (0 = forever) or ctx is cancelled. A
// failed counter read ends the run with that error.
func Monitor(ctx context.Context, w io.Writer, cfg config.Config, topo model.Topology, read CountReader, sleep Sleeper) error {
	sources := topo.Sources()
	if len(sources) == 0 {
		return discovery.ErrNoSources
	}
	initial, err := read()
	if err != nil {
		return err
	}
	s := sampler.New(sources, initial, cfg.Interval, 1)
	s.Threshold = cfg.Threshold

	var enc *json.Encoder
	if cfg.JSON {
		enc = json.NewEncoder(w)
	} else {
		printMonitorHeader(w, cfg, sources)
	}

	start := time.Now()
	for n := 0; cfg.Count == 0 || n < cfg.Count; n++ {
		if err := sleep(ctx, cfg.Interval); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		counts, err := read()
		if err != nil {
			return err
		}
		tick := s.Update(counts, time.Since(start))
		if enc != nil {
			if err := enc.Encode(tick); err != nil {
				return err
			}
			continue
		}
		printMonitorRow(w, tick)
	}
	return nil
}

func printMonitorHeader(w io.Writer, cfg config.Config, sources []model.InterruptSourceInfo) {
	fmt.Fprintln(w, "=== I2C Interrupt Rate Monitor ===")
	fmt.Fprintf(w, "Interval: %dms | Threshold: %.0f irqs/s | Sources: %d\n\n",
		cfg.Interval.Milliseconds(), cfg.Threshold, len(sources))

	for _, src := range sources {
		prefix := ""
		if !src.IsController {
			prefix = "  └─ "
		}
		fmt.Fprintf(w, "%sIRQ %3s: %s (%s)\n", prefix, src.IRQ, src.Name, src.DeviceType)
	}
	fmt.Fprintln(w)

	var b strings.Builder
	fmt.Fprintf(&b, "%6s", "Sample")
	for _, src := range sources {
		fmt.Fprintf(&b, "  %*s", columnWidth, truncate(src.Name, columnWidth))
	}
	fmt.Fprintf(&b, "  %10s", "Status")
	fmt.Fprintln(w, b.String())
}

func printMonitorRow(w io.Writer, tick model.Tick) {
	var b strings.Builder
	fmt.Fprintf(&b, "%6d", tick.Sample)
	for _, r := range tick.Rates {
		fmt.Fprintf(&b, "  %*s", columnWidth, fmt.Sprintf("%.1f/s", r.Rate))
	}
	status := "ok"
	if tick.High {
		status = "** HIGH"
	}
	fmt.Fprintf(&b, "  %10s", status)
	fmt.Fprintln(w, b.String())
}

// Summary prints average and peak rates after a dashboard run.
func Summary(w io.Writer, s *sampler.Sampler, elapsed time.Duration) {
	if s.Samples() == 0 {
		return
	}
	fmt.Fprint(w, "\n=== Interrupt Rate Summary ===\n\n")
	fmt.Fprintf(w, "%-40s %12s %12s %12s\n", "Source", "Avg Rate", "Max Rate", "Type")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, h := range s.Series() {
		typ := h.Info.DeviceType
		if h.Info.IsController {
			typ = "Controller"
		}
		fmt.Fprintf(w, "%-40s %10.1f/s %10.1f/s %12s\n", DisplayName(h.Info), h.Stats.Average(), h.Stats.Max, typ)
	}
	total := s.TotalStats()
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "%-40s %10.1f/s %10.1f/s\n", "TOTAL", total.Average(), total.Max)
	fmt.Fprintf(w, "\nSamples: %d over %.1fs\n\n", s.Samples(), elapsed.Seconds())
}

// DisplayName indents device rows under their controller.
func DisplayName(info model.InterruptSourceInfo) string {
	if info.IsController {
		return info.Name
	}
	return strings.Repeat("  ", info.Indent) + "└─ " + info.Name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
