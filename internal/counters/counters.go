// Package counters reads the kernel interrupt-counter table
// (/proc/interrupts) and sums each row across CPUs.
package counters

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

// ProcPath is the interrupt table on Linux.
const ProcPath = "/proc/interrupts"

// ErrEmpty is returned for a table without even a CPU header line.
var ErrEmpty = errors.New("empty interrupt table")

// ReadProc parses /proc/interrupts.
func ReadProc() ([]model.InterruptSource, error) { return Read(ProcPath) }

// Read parses the interrupt table at path.
func Read(path string) ([]model.InterruptSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sources, err := Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sources, nil
}

// Parse turns interrupt table text into per-IRQ totals. The header's
// field count bounds how many numeric columns are summed; the first
// non-numeric token ends a row's counts.
func Parse(content string) ([]model.InterruptSource, error) {
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		return nil, ErrEmpty
	}
	cpus := len(strings.Fields(sc.Text()))

	var sources []model.InterruptSource
	for sc.Scan() {
		if src, ok := parseLine(sc.Text(), cpus); ok {
			sources = append(sources, src)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

func parseLine(line string, cpus int) (model.InterruptSource, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return model.InterruptSource{}, false
	}
	src := model.InterruptSource{IRQ: strings.TrimSuffix(fields[0], ":")}
	for i := 1; i < len(fields) && i <= cpus; i++ {
		n, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			break
		}
		src.Count += n
	}
	return src, true
}

// Counts indexes sources by IRQ.
func Counts(sources []model.InterruptSource) map[string]uint64 {
	m := make(map[string]uint64, len(sources))
	for _, s := range sources {
		m[s.IRQ] = s.Count
	}
	return m
}

// Reader reads IRQ counts from a fixed path.
type Reader struct {
	Path string
}

// NewReader returns a Reader for /proc/interrupts.
func NewReader() Reader { return Reader{Path: ProcPath} }

// Counts reads the table and indexes it by IRQ.
func (r Reader) Counts() (map[string]uint64, error) {
	sources, err := Read(r.Path)
	if err != nil {
		return nil, err
	}
	return Counts(sources), nil
}
