// Package timeseries holds bounded rolling history for one metric stream.
package timeseries

import (
	"sync"

	"github.com/ground-control/groundcontrol/internal/source"
)

// DefaultCapacity is the number of samples retained when no capacity is given.
const DefaultCapacity = 120

// Buffer is a fixed-capacity FIFO ring of samples. Pushing onto a full buffer
// evicts the oldest sample. Readers always observe a whole push: a snapshot is
// taken under the same lock the writer holds.
type Buffer struct {
	mu    sync.RWMutex
	data  []source.Sample
	head  int
	count int
}

// New creates a buffer holding at most capacity samples.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]source.Sample, capacity)}
}

// Push appends a sample. Samples older than the newest one are rejected so
// timestamps within the stream never decrease.
func (b *Buffer) Push(s source.Sample) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count > 0 {
		last := b.data[(b.head-1+len(b.data))%len(b.data)]
		if s.Timestamp.Before(last.Timestamp) {
			return false
		}
	}

	b.data[b.head] = s
	b.head = (b.head + 1) % len(b.data)
	if b.count < len(b.data) {
		b.count++
	}
	return true
}

// Snapshot returns the retained samples oldest first. The slice is a copy.
func (b *Buffer) Snapshot() []source.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastLocked(b.count)
}

// Last returns the most recent n samples oldest first.
func (b *Buffer) Last(n int) []source.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastLocked(n)
}

// Latest returns the newest sample.
func (b *Buffer) Latest() (source.Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return source.Sample{}, false
	}
	return b.data[(b.head-1+len(b.data))%len(b.data)], true
}

func (b *Buffer) lastLocked(n int) []source.Sample {
	if n <= 0 || b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	out := make([]source.Sample, n)
	size := len(b.data)
	// head is the next write slot, so the newest sample sits at head-1.
	start := (b.head - n + size) % size
	for i := 0; i < n; i++ {
		out[i] = b.data[(start+i)%size]
	}
	return out
}

// Series returns the chronological values of one field. Samples where the
// field is missing are skipped.
func (b *Buffer) Series(group, name string) []float64 {
	snap := b.Snapshot()
	out := make([]float64, 0, len(snap))
	for _, s := range snap {
		if v, ok := s.Value(group, name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Points is Series with timestamps, for time-axis charts.
func (b *Buffer) Points(group, name string) []Point {
	snap := b.Snapshot()
	out := make([]Point, 0, len(snap))
	for _, s := range snap {
		if v, ok := s.Value(group, name); ok {
			out = append(out, Point{Time: s.Timestamp, Value: v})
		}
	}
	return out
}

// Len returns the number of retained samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Reset drops every sample.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.data {
		b.data[i] = source.Sample{}
	}
	b.head = 0
	b.count = 0
}
