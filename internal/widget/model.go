// Package widget turns metric samples into dashboard panels.
//
// A Model keeps the latest sample and the rolling history for one kind while
// its panel is visible. Render is a pure function of that state and the
// rectangle it is given.
package widget

import (
	"time"

	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/timeseries"
)

// DefaultStaleAfter is the number of ticks without a fresh sample after which
// a panel stops showing its last value.
const DefaultStaleAfter = 5

// State is what a panel currently shows.
type State int

const (
	// StateWaiting means no sample has arrived yet.
	StateWaiting State = iota
	// StateLive means the latest sample is fresh and carries data.
	StateLive
	// StateUnavailable means the source reported absence or the data went stale.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateLive:
		return "live"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Model is the live state of one panel.
type Model struct {
	spec       Spec
	capacity   int
	staleAfter int
	window     time.Duration

	buf        *timeseries.Buffer
	latest     source.Sample
	hasLatest  bool
	sinceFresh int

	// version changes whenever anything Render reads changes, except the
	// staleness state, which is part of the cache key instead.
	version uint64
	cache   drawCache
	draws   int
}

type drawCache struct {
	valid   bool
	rect    layout.Rect
	version uint64
	state   State
	out     string
}

// Option configures a Model.
type Option func(*Model)

// WithStaleAfter sets how many ticks a sample stays current.
func WithStaleAfter(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.staleAfter = n
		}
	}
}

// WithWindow sets the time span shown by the axis chart.
func WithWindow(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.window = d
		}
	}
}

// New creates a panel. Visible panels start active.
func New(spec Spec, capacity int, opts ...Option) *Model {
	if capacity <= 0 {
		capacity = timeseries.DefaultCapacity
	}
	m := &Model{
		spec:       spec,
		capacity:   capacity,
		staleAfter: DefaultStaleAfter,
		window:     time.Duration(capacity) * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	if spec.Visible {
		m.Activate()
	}
	return m
}

// Spec returns the panel configuration.
func (m *Model) Spec() Spec { return m.spec }

// Kind returns the metric kind.
func (m *Model) Kind() source.Kind { return m.spec.Kind }

// Mode returns the display mode.
func (m *Model) Mode() DisplayMode { return m.spec.Mode }

// SetMode changes the display mode. History is kept.
func (m *Model) SetMode(mode DisplayMode) {
	if mode != m.spec.Mode {
		m.spec.Mode = mode
		m.version++
	}
}

// Visible reports whether the panel is shown.
func (m *Model) Visible() bool { return m.spec.Visible }

// SetVisible shows or hides the panel, allocating or releasing its buffer.
func (m *Model) SetVisible(v bool) {
	m.spec.Visible = v
	m.version++
	if v {
		m.Activate()
	} else {
		m.Deactivate()
	}
}

// Activate allocates the history buffer.
func (m *Model) Activate() {
	if m.buf == nil {
		m.buf = timeseries.New(m.capacity)
	}
}

// Deactivate drops the buffer and the latest sample.
func (m *Model) Deactivate() {
	m.buf = nil
	m.latest = source.Sample{}
	m.hasLatest = false
	m.sinceFresh = 0
	m.version++
	m.cache = drawCache{}
}

// Active reports whether the panel holds a buffer.
func (m *Model) Active() bool { return m.buf != nil }

// Buffer returns the history, or nil while inactive.
func (m *Model) Buffer() *timeseries.Buffer { return m.buf }

// Apply records a sample. Samples for another kind or older than the
// current one are ignored. An unavailable sample replaces the latest so
// old data is not kept on screen, but it is not added to the history.
func (m *Model) Apply(s source.Sample) bool {
	if !m.Active() || s.Kind != m.spec.Kind {
		return false
	}
	if m.hasLatest && s.Timestamp.Before(m.latest.Timestamp) {
		return false
	}
	if s.Available() && !m.buf.Push(s) {
		return false
	}
	m.latest = s
	m.hasLatest = true
	m.sinceFresh = 0
	m.version++
	return true
}

// Tick advances the staleness counter. Call once per sampling tick.
func (m *Model) Tick() {
	if m.Active() {
		m.sinceFresh++
	}
}

// Stale reports whether StaleAfter ticks passed without a fresh sample.
func (m *Model) Stale() bool {
	return m.sinceFresh >= m.staleAfter
}

// Latest returns the most recent sample.
func (m *Model) Latest() (source.Sample, bool) {
	return m.latest, m.hasLatest
}

// State classifies what the panel shows.
func (m *Model) State() State {
	switch {
	case m.Stale():
		return StateUnavailable
	case !m.hasLatest:
		return StateWaiting
	case !m.latest.Available():
		return StateUnavailable
	default:
		return StateLive
	}
}
