package source

import "time"

// NoiseFloor is the smallest rate reported as non-zero, in bytes per second
// (0.01 MiB/s).
const NoiseFloor = 0.01 * 1024 * 1024

type counterReading struct {
	value uint64
	at    time.Time
}

// RateTracker turns monotonically increasing byte counters into per-second
// rates. It is owned by a single source and not safe for concurrent use; the
// sampler never runs two samples of the same source at once.
type RateTracker struct {
	prev  map[string]counterReading
	floor float64
}

// NewRateTracker creates a tracker that reports rates below floor as zero.
func NewRateTracker(floor float64) *RateTracker {
	return &RateTracker{
		prev:  make(map[string]counterReading),
		floor: floor,
	}
}

// Rate records the counter value for key and returns the rate since the
// previous reading. ok is false on the first reading or when time did not
// advance. A counter that went backwards (reset or wrap) yields zero.
func (r *RateTracker) Rate(key string, value uint64, at time.Time) (rate float64, ok bool) {
	prev, seen := r.prev[key]
	r.prev[key] = counterReading{value: value, at: at}
	if !seen {
		return 0, false
	}

	elapsed := at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return 0, false
	}

	if value < prev.value {
		return 0, true
	}

	rate = float64(value-prev.value) / elapsed
	if rate < r.floor {
		rate = 0
	}
	return rate, true
}

// Forget drops keys not present in keep, so devices that disappear do not
// hold stale readings.
func (r *RateTracker) Forget(keep map[string]bool) {
	for k := range r.prev {
		if !keep[k] {
			delete(r.prev, k)
		}
	}
}
