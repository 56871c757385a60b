// Package sampler turns successive /proc/interrupts snapshots into
// per-source rate series with running statistics and a TOTAL series.
package sampler

import (
	"time"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

// Stats are running aggregates of a rate series. They are never reset
// during a run.
type Stats struct {
	Latest float64
	Sum    float64
	Min    float64
	Max    float64
	Count  int
}

// Observe folds one rate into the aggregates.
func (s *Stats) Observe(rate float64) {
	if s.Count == 0 || rate < s.Min {
		s.Min = rate
	}
	if s.Count == 0 || rate > s.Max {
		s.Max = rate
	}
	s.Latest = rate
	s.Sum += rate
	s.Count++
}

// Average is the mean rate, 0 before the first sample.
func (s Stats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// SourceHistory is the accumulated series of one interrupt source.
type SourceHistory struct {
	Info model.InterruptSourceInfo
	// ColorIndex is the ordinal of the source within its role
	// (controller or device), stable across visibility changes.
	ColorIndex int
	Window     *Window
	PrevCount  uint64
	Stats      Stats
	Visible    bool
}

// Rate is the non-negative per-second rate between two counter reads
// taken one nominal interval apart. A counter that went backwards
// (reset, CPU hot-unplug) yields 0.
func Rate(prev, cur uint64, interval time.Duration) float64 {
	if cur <= prev || interval <= 0 {
		return 0
	}
	return float64(cur-prev) / interval.Seconds()
}

// Sampler owns the series of every tracked source. It is driven by a
// single loop and is not safe for concurrent use.
type Sampler struct {
	Interval time.Duration
	// Threshold flags a tick as high when any source rate exceeds it.
	// Zero disables the flag.
	Threshold float64

	series  []*SourceHistory
	total   *Window
	stats   Stats
	samples int
}

// New seeds one series per source with its count from initial. Sources
// missing from initial start from a zero baseline.
func New(sources []model.InterruptSourceInfo, initial map[string]uint64, interval time.Duration, window int) *Sampler {
	if window <= 0 {
		window = DefaultWindow
	}
	s := &Sampler{
		Interval: interval,
		total:    NewWindow(window),
	}
	var controllers, devices int
	for _, info := range sources {
		h := &SourceHistory{
			Info:      info,
			Window:    NewWindow(window),
			PrevCount: initial[info.IRQ],
			Visible:   true,
		}
		if info.IsController {
			h.ColorIndex = controllers
			controllers++
		} else {
			h.ColorIndex = devices
			devices++
		}
		s.series = append(s.series, h)
	}
	return s
}

// Update records one tick. Every series receives exactly one point; a
// source absent from counts contributes a zero rate and keeps its
// baseline. The TOTAL point is the sum of this tick's source rates.
func (s *Sampler) Update(counts map[string]uint64, elapsed time.Duration) model.Tick {
	secs := elapsed.Seconds()
	tick := model.Tick{
		Timestamp: time.Now(),
		Elapsed:   secs,
		Interval:  s.Interval,
		Rates:     make([]model.Rate, 0, len(s.series)),
	}

	var total float64
	for _, h := range s.series {
		var rate float64
		if cur, ok := counts[h.Info.IRQ]; ok {
			rate = Rate(h.PrevCount, cur, s.Interval)
			h.PrevCount = cur
		}
		h.Window.Push(model.Point{Elapsed: secs, Rate: rate})
		h.Stats.Observe(rate)
		total += rate

		tick.Rates = append(tick.Rates, model.Rate{IRQ: h.Info.IRQ, Name: h.Info.Name, Rate: rate})
		if s.Threshold > 0 && rate > s.Threshold {
			tick.High = true
		}
	}

	s.total.Push(model.Point{Elapsed: secs, Rate: total})
	s.stats.Observe(total)
	s.samples++

	tick.Sample = s.samples
	tick.Total = total
	return tick
}

// Series returns the tracked series in topology order.
func (s *Sampler) Series() []*SourceHistory { return s.series }

// Total returns the TOTAL series window.
func (s *Sampler) Total() *Window { return s.total }

// TotalStats returns the TOTAL series aggregates.
func (s *Sampler) TotalStats() Stats { return s.stats }

// Samples is the number of ticks recorded.
func (s *Sampler) Samples() int { return s.samples }

// High reports whether the source's latest rate exceeds the threshold.
func (s *Sampler) High(h *SourceHistory) bool {
	return s.Threshold > 0 && h.Stats.Count > 0 && h.Stats.Latest > s.Threshold
}
