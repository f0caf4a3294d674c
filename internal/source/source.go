// Package source provides the metric providers polled by the sampler.
//
// Every provider implements Source. Expected absence (no GPU, no sensors, an
// unsupported platform) is reported by returning an error that wraps
// ErrUnavailable; it is never fatal. Fields that could not be read are kept in
// the sample with OK set to false so the rest of the reading still renders.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks a metric that cannot be read on this host.
var ErrUnavailable = errors.New("metric source unavailable")

// Source produces samples for one Kind.
type Source interface {
	Kind() Kind
	Sample(ctx context.Context) (Sample, error)
}

// unavailable wraps ErrUnavailable with a reason.
func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// IsUnavailable reports whether err signals expected absence.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Registry indexes sources by kind.
type Registry struct {
	sources map[Kind]Source
}

// NewRegistry builds a registry. A later source replaces an earlier one of
// the same kind.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[Kind]Source, len(sources))}
	for _, s := range sources {
		if s == nil {
			continue
		}
		r.sources[s.Kind()] = s
	}
	return r
}

// Get returns the source for a kind.
func (r *Registry) Get(kind Kind) (Source, bool) {
	s, ok := r.sources[kind]
	return s, ok
}

// Kinds returns the registered kinds in canonical order.
func (r *Registry) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if _, ok := r.sources[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// DefaultSources returns the host-backed implementation of every kind.
func DefaultSources() *Registry {
	return NewRegistry(
		NewCPUSource(),
		NewMemorySource(),
		NewDiskSource(),
		NewNetworkSource(),
		NewTemperatureSource(),
		NewGPUSource(),
	)
}

// Probe takes a single sample from src with a timeout, converting
// unavailability into the sentinel sample. Used by diagnostics.
func Probe(ctx context.Context, src Source, timeout time.Duration) (Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s, err := src.Sample(ctx)
	if err != nil {
		return Unavailable(src.Kind(), time.Now(), err), err
	}
	s.Normalize()
	return s, nil
}
