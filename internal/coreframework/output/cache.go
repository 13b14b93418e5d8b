// Package output buffers rendered report lines and delivers them to a sink.
package output

import (
	"sync"
)

// Sink renders one line at a time, synchronously.
type Sink interface {
	Emit(line string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string)

// Emit calls f(line).
func (f SinkFunc) Emit(line string) { f(line) }

// Report is where the display pipeline writes lines. A Cache holds them until
// Flush; Immediate writes each line as it arrives. Clear abandons whatever has
// not been shown yet.
type Report interface {
	AddLine(line string)
	Flush()
	Clear()
}

// Cache accumulates rendered lines and emits them as one uninterrupted block.
// It does not coordinate with other console producers: the caller guarantees
// that Flush runs once, after all preparation is complete.
type Cache struct {
	mu    sync.Mutex
	sink  Sink
	lines []string
}

var _ Report = (*Cache)(nil)

// NewCache creates an empty cache that flushes to sink.
func NewCache(sink Sink) *Cache {
	return &Cache{sink: sink}
}

// AddLine appends a line.
func (c *Cache) AddLine(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

// AddLines appends lines in order.
func (c *Cache) AddLines(lines []string) {
	c.mu.Lock()
	c.lines = append(c.lines, lines...)
	c.mu.Unlock()
}

// Lines returns a copy of the buffered lines.
func (c *Cache) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Size returns the number of buffered lines.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// IsEmpty reports whether nothing is buffered.
func (c *Cache) IsEmpty() bool {
	return c.Size() == 0
}

// Clear discards buffered lines without rendering them.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Flush emits a blank line, every buffered line in order, a closing blank
// line, and then empties the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	lines := c.lines
	c.lines = nil
	c.mu.Unlock()

	c.sink.Emit("")
	for _, line := range lines {
		c.sink.Emit(line)
	}
	c.sink.Emit("")
}

// Immediate writes every line straight to its sink. Flush does nothing.
type Immediate struct {
	Sink Sink
}

var _ Report = Immediate{}

// AddLine emits line.
func (i Immediate) AddLine(line string) { i.Sink.Emit(line) }

// Flush is a no-op.
func (i Immediate) Flush() {}

// Clear is a no-op: emitted lines cannot be recalled.
func (i Immediate) Clear() {}

// Mode names a Report implementation.
type Mode string

const (
	ModeCached    Mode = "cached"
	ModeImmediate Mode = "immediate"
)

// NewReport builds the Report for mode. Unknown modes fall back to cached.
func NewReport(mode Mode, sink Sink) Report {
	if mode == ModeImmediate {
		return Immediate{Sink: sink}
	}
	return NewCache(sink)
}
