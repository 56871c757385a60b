package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Commands understood by i2cirq.
const (
	CommandList    = "list"
	CommandMonitor = "monitor"
	CommandTUI     = "tui"
)

// Config carries runtime options for i2cirq.
type Config struct {
	Command   string
	Interval  time.Duration
	Count     int     // monitor only; 0 = unlimited
	Threshold float64 // interrupts/s; 0 disables highlighting
	JSON      bool
	Verbose   bool
}

func Default() Config {
	return Config{
		Interval:  time.Second,
		Count:     0,
		Threshold: 100,
	}
}

// FromArgs parses the flags of one subcommand, then applies environment
// overrides.
func FromArgs(command string, args []string) (Config, error) {
	cfg := Default()
	cfg.Command = command

	fs := pflag.NewFlagSet("i2cirq "+command, pflag.ContinueOnError)
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log discovery details to stderr")

	interval := "1000"
	switch command {
	case CommandList:
		fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the topology as JSON")
	case CommandMonitor:
		fs.StringVarP(&interval, "interval", "i", interval, "sampling interval (milliseconds, or a duration like 500ms)")
		fs.IntVarP(&cfg.Count, "count", "n", cfg.Count, "number of samples (0 = unlimited)")
		fs.Float64VarP(&cfg.Threshold, "threshold", "t", cfg.Threshold, "rate above which a sample is flagged (irqs/s)")
		fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "emit one JSON object per sample")
	case CommandTUI:
		fs.StringVarP(&interval, "interval", "i", interval, "sampling interval (milliseconds, or a duration like 500ms)")
		fs.Float64VarP(&cfg.Threshold, "threshold", "t", cfg.Threshold, "rate above which a source is highlighted (irqs/s)")
	default:
		return cfg, fmt.Errorf("unknown command %q", command)
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	d, err := ParseInterval(interval)
	if err != nil {
		return cfg, err
	}
	cfg.Interval = d

	if v := os.Getenv("I2CIRQ_INTERVAL"); v != "" && !fs.Changed("interval") {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("I2CIRQ_THRESHOLD"); v != "" && !fs.Changed("threshold") {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Threshold = parsed
		}
	}
	return cfg, cfg.Validate()
}

// ParseInterval accepts a bare integer as milliseconds or any
// time.ParseDuration string.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms > math.MaxInt64/int64(time.Millisecond) {
			return 0, fmt.Errorf("interval %q is too large", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return d, nil
}

// Validate rejects values the sampling loop cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.Threshold < 0 {
		return errors.New("threshold must not be negative")
	}
	if c.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}
