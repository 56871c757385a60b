package sampler

import (
	"github.com/asecurityteam/rolling"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

// DefaultWindow is the number of points kept per series.
const DefaultWindow = 300

// Window is a fixed-capacity FIFO of points. Pushing into a full window
// evicts the oldest point. Rates live in a rolling point policy; the
// elapsed stamps are kept alongside at the same offsets.
type Window struct {
	rates   *rolling.PointPolicy
	elapsed []float64
	start   int // index of the oldest point once full
	size    int
}

// NewWindow returns an empty window holding at most capacity points.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		rates:   rolling.NewPointPolicy(rolling.NewWindow(capacity)),
		elapsed: make([]float64, capacity),
	}
}

// Push appends p, dropping the oldest point if the window is full.
func (w *Window) Push(p model.Point) {
	// The policy writes at offset pushes%capacity, which is where the
	// stamp goes too.
	w.rates.Append(p.Rate)
	if w.size < len(w.elapsed) {
		w.elapsed[w.size] = p.Elapsed
		w.size++
		return
	}
	w.elapsed[w.start] = p.Elapsed
	w.start = (w.start + 1) % len(w.elapsed)
}

// Len is the number of points held.
func (w *Window) Len() int { return w.size }

// Cap is the maximum number of points held.
func (w *Window) Cap() int { return len(w.elapsed) }

// Rates returns the held rates, oldest first.
func (w *Window) Rates() []float64 {
	out := make([]float64, w.size)
	w.rates.Reduce(func(buckets rolling.Window) float64 {
		for i := range out {
			out[i] = bucketValue(buckets, (w.start+i)%len(buckets))
		}
		return 0
	})
	return out
}

// Points returns the held points, oldest first.
func (w *Window) Points() []model.Point {
	rates := w.Rates()
	out := make([]model.Point, len(rates))
	for i, r := range rates {
		out[i] = model.Point{Elapsed: w.elapsed[(w.start+i)%len(w.elapsed)], Rate: r}
	}
	return out
}

// Last returns the newest point.
func (w *Window) Last() (model.Point, bool) {
	if w.size == 0 {
		return model.Point{}, false
	}
	i := (w.start + w.size - 1) % len(w.elapsed)
	p := model.Point{Elapsed: w.elapsed[i]}
	w.rates.Reduce(func(buckets rolling.Window) float64 {
		p.Rate = bucketValue(buckets, i)
		return 0
	})
	return p, true
}

// Max returns the highest rate held, or 0 for an empty window. Unfilled
// buckets hold zero, which never exceeds a rate.
func (w *Window) Max() float64 {
	if w.size == 0 {
		return 0
	}
	if m := w.rates.Reduce(rolling.Max); m > 0 {
		return m
	}
	return 0
}

func bucketValue(buckets rolling.Window, i int) float64 {
	if len(buckets[i]) == 0 {
		return 0
	}
	return buckets[i][0]
}
