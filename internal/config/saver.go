package config

import (
	"sync"
	"time"

	"github.com/ground-control/groundcontrol/internal/logger"
)

// SaveDebounce is how long the saver waits for further changes before
// writing.
const SaveDebounce = 300 * time.Millisecond

// Persister writes a config. *Store satisfies it.
type Persister interface {
	Save(AppConfig) error
}

// Saver coalesces bursts of config changes into a single write.
type Saver struct {
	store   Persister
	delay   time.Duration
	log     logger.Logger
	onError func(error)

	// writeMu serializes Save calls so a timer flush and an explicit flush
	// cannot land out of order.
	writeMu sync.Mutex

	mu      sync.Mutex
	pending *AppConfig
	timer   *time.Timer
	closed  bool
	writes  int
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithDebounce overrides SaveDebounce.
func WithDebounce(d time.Duration) SaverOption {
	return func(s *Saver) { s.delay = d }
}

// WithSaveLogger sets the logger used for write failures.
func WithSaveLogger(l logger.Logger) SaverOption {
	return func(s *Saver) { s.log = l }
}

// OnSaveError registers a callback for write failures.
func OnSaveError(fn func(error)) SaverOption {
	return func(s *Saver) { s.onError = fn }
}

// NewSaver creates a saver writing through store.
func NewSaver(store Persister, opts ...SaverOption) *Saver {
	s := &Saver{store: store, delay: SaveDebounce}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDefault(s.log)
	return s
}

// Schedule queues cfg for writing. A later call within the debounce window
// replaces it and restarts the timer.
func (s *Saver) Schedule(cfg AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	c := cfg.Clone()
	s.pending = &c
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { _ = s.Flush() })
}

// Cancel drops any queued write. A write already in progress completes.
func (s *Saver) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

// Pending reports whether a write is queued.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Writes returns how many writes have been attempted.
func (s *Saver) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Flush writes any pending config now.
func (s *Saver) Flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cfg := s.pending
	s.pending = nil
	if cfg != nil {
		s.writes++
	}
	s.mu.Unlock()

	if cfg == nil {
		return nil
	}

	// The store is called outside mu so Schedule never waits on disk.
	if err := s.store.Save(*cfg); err != nil {
		s.log.Error("saving config: %v", err)
		if s.onError != nil {
			s.onError(err)
		}
		return err
	}
	s.log.Debug("config saved")
	return nil
}

// Close flushes pending work and rejects further schedules.
func (s *Saver) Close() error {
	err := s.Flush()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
