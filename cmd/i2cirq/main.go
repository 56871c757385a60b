// i2cirq diagnoses interrupt behavior of I2C-attached HID devices
// (touchpads, touchscreens, styluses). It maps each I2C controller to its
// HID devices and their GPIO interrupt lines, then samples
// /proc/interrupts to show per-source interrupt rates.
//
// Usage:
//
//	i2cirq list [--json]
//	i2cirq monitor [-i interval] [-n count] [-t threshold] [--json]
//	i2cirq tui [-i interval] [-t threshold]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/config"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/counters"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/discovery"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/hostinfo"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/report"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, discovery.ErrNoControllers) || errors.Is(err, discovery.ErrNoSources) {
			fmt.Fprintf(os.Stderr, "%v.\n\n%s\n", err, discovery.Hint)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage()
		return nil
	}

	cfg, err := config.FromArgs(args[0], args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	topo, err := discovery.Discover(logger)
	if err != nil {
		return err
	}
	reader := counters.NewReader()

	switch cfg.Command {
	case config.CommandList:
		if cfg.JSON {
			return report.ListJSON(os.Stdout, topo)
		}
		report.List(os.Stdout, topo, hostinfo.Probe())
		return nil

	case config.CommandMonitor:
		if err := discovery.Validate(topo); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return report.Monitor(ctx, os.Stdout, cfg, topo, reader.Counts, report.Sleep)

	case config.CommandTUI:
		if err := discovery.Validate(topo); err != nil {
			return err
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("tui needs a terminal on stdout; use 'i2cirq monitor' instead")
		}
		m, err := ui.Run(cfg, topo, hostinfo.Probe(), reader.Counts)
		if m != nil {
			report.Summary(os.Stdout, m.Sampler(), m.RunTime())
		}
		return err
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `i2cirq: I2C and HID interrupt rate monitor

Usage:
  i2cirq list [--json]
      List detected I2C controllers, their HID devices and interrupt sources.
  i2cirq monitor [-i interval] [-n count] [-t threshold] [--json]
      Print one row of interrupt rates per sample.
  i2cirq tui [-i interval] [-t threshold]
      Live dashboard with charts. j/k select, space hides, q quits.

Intervals are milliseconds (1000) or durations (500ms, 2s).
Environment: I2CIRQ_INTERVAL, I2CIRQ_THRESHOLD.
`)
}
