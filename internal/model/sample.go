package model

import "time"

// InterruptSource is one row of /proc/interrupts at a moment in time.
type InterruptSource struct {
	IRQ   string // "42", "NMI", "LOC"
	Count uint64 // summed across CPUs
}

// Point is one sample of a rate series.
type Point struct {
	Elapsed float64 // seconds since the run started
	Rate    float64 // interrupts per second
}

// Rate is the per-source value of a single tick.
type Rate struct {
	IRQ  string  `json:"irq"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// Tick is the record produced by one sampling pass, shared by the
// dashboard, the text monitor and the NDJSON exporter.
type Tick struct {
	Sample    int           `json:"sample"`
	Timestamp time.Time     `json:"timestamp"`
	Elapsed   float64       `json:"elapsed_s"`
	Interval  time.Duration `json:"interval_ns"`
	Rates     []Rate        `json:"rates"`
	Total     float64       `json:"total"`
	High      bool          `json:"high"`
}

// Host identifies the machine a run is observing.
type Host struct {
	Hostname string
	Kernel   string
	Platform string
	CPUs     int
}
