// Package sampler schedules metric acquisition for the dashboard.
//
// A Sampler is owned by the dashboard's update loop and is not safe for
// concurrent use. Dispatch hands out Jobs that run on other goroutines; each
// Job's Result must be passed back through Complete on the owning goroutine.
// A kind whose previous Job has not completed is skipped, so a slow or hung
// source never accumulates goroutines.
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/source"
)

// DefaultTimeout bounds a single Sample call when no timeout is configured.
const DefaultTimeout = time.Second

// Job performs one acquisition. It blocks until the source returns.
type Job func() Result

// Result is the outcome of a Job.
type Result struct {
	Kind     source.Kind
	Sample   source.Sample
	Started  time.Time
	Duration time.Duration
	// Timeout is set when the source exceeded its deadline; Sample is unset.
	Timeout bool
	Err     error
}

// Stats counts dispatch outcomes since creation.
type Stats struct {
	Dispatched int
	Skipped    int
	Completed  int
	Timeouts   int
	Failures   int
}

// Sampler tracks which sources are in flight.
type Sampler struct {
	reg     *source.Registry
	timeout time.Duration
	log     logger.Logger

	inFlight  map[source.Kind]bool
	available map[source.Kind]bool
	stats     Stats
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithTimeout bounds each Sample call.
func WithTimeout(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for availability transitions.
func WithLogger(l logger.Logger) Option {
	return func(s *Sampler) { s.log = l }
}

// New creates a sampler over reg.
func New(reg *source.Registry, opts ...Option) *Sampler {
	s := &Sampler{
		reg:       reg,
		timeout:   DefaultTimeout,
		inFlight:  make(map[source.Kind]bool),
		available: make(map[source.Kind]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDefault(s.log)
	return s
}

// Dispatch returns a Job for every kind that has a source and no Job in
// flight. Kinds still in flight are skipped for this tick.
func (s *Sampler) Dispatch(ctx context.Context, now time.Time, kinds []source.Kind) []Job {
	var jobs []Job
	for _, kind := range kinds {
		src, ok := s.reg.Get(kind)
		if !ok {
			continue
		}
		if s.inFlight[kind] {
			s.stats.Skipped++
			s.log.Debug("%s: previous sample still running, skipping tick", kind)
			continue
		}
		s.inFlight[kind] = true
		s.stats.Dispatched++
		jobs = append(jobs, s.job(ctx, src, now))
	}
	return jobs
}

func (s *Sampler) job(ctx context.Context, src source.Source, started time.Time) Job {
	timeout := s.timeout
	return func() Result {
		return run(ctx, src, started, timeout)
	}
}

// run calls the source with a deadline and converts every failure mode,
// panics included, into a Result.
func run(parent context.Context, src source.Source, started time.Time, timeout time.Duration) (res Result) {
	kind := src.Kind()
	res = Result{Kind: kind, Started: started}
	begin := time.Now()

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	defer func() {
		res.Duration = time.Since(begin)
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", source.ErrUnavailable, r)
			res.Sample = source.Unavailable(kind, time.Now(), err)
			res.Err = err
			res.Timeout = false
		}
	}()

	sample, err := src.Sample(ctx)
	if ctx.Err() == context.DeadlineExceeded && parent.Err() == nil {
		res.Timeout = true
		res.Err = errors.WrapWithCode(ctx.Err(), errors.ErrSampleTimeout,
			fmt.Sprintf("%s sample exceeded %s", kind, timeout), "")
		return res
	}
	if err != nil {
		res.Err = err
		// Stamped at completion so it never sorts behind a sample that
		// finished after this job was dispatched.
		res.Sample = source.Unavailable(kind, time.Now(), err)
		return res
	}

	sample.Kind = kind
	if sample.Timestamp.IsZero() {
		sample.Timestamp = started
	}
	sample.Normalize()
	res.Sample = sample
	return res
}

// Complete records a finished Job and reports whether its sample should be
// applied. It must be called on the goroutine that calls Dispatch.
func (s *Sampler) Complete(res Result) (source.Sample, bool) {
	delete(s.inFlight, res.Kind)
	s.stats.Completed++

	if res.Timeout {
		s.stats.Timeouts++
		s.log.Warn("%s: %v", res.Kind, res.Err)
		return source.Sample{}, false
	}

	if res.Err != nil && !source.IsUnavailable(res.Err) {
		s.stats.Failures++
	}
	s.noteAvailability(res.Kind, res.Sample)
	return res.Sample, true
}

// noteAvailability logs only transitions, not every unavailable tick.
func (s *Sampler) noteAvailability(kind source.Kind, sample source.Sample) {
	now := sample.Available()
	prev, known := s.available[kind]
	s.available[kind] = now

	switch {
	case known && prev == now:
		return
	case !now && known:
		s.log.Warn("%s became unavailable: %v", kind, sample.Err)
	case !now:
		s.log.Info("%s unavailable: %v", kind, sample.Err)
	case known:
		s.log.Info("%s available again", kind)
	}
}

// InFlight reports whether kind has an outstanding Job.
func (s *Sampler) InFlight(kind source.Kind) bool {
	return s.inFlight[kind]
}

// Available reports the last known availability of kind.
func (s *Sampler) Available(kind source.Kind) (available, known bool) {
	available, known = s.available[kind]
	return available, known
}

// Timeout returns the per-sample deadline.
func (s *Sampler) Timeout() time.Duration {
	return s.timeout
}

// Stats returns a copy of the counters.
func (s *Sampler) Stats() Stats {
	return s.stats
}
