package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateTracker(t *testing.T) {
	base := time.Unix(1000, 0)
	r := NewRateTracker(0)

	_, ok := r.Rate("eth0", 1000, base)
	assert.False(t, ok, "first reading has nothing to diff against")

	rate, ok := r.Rate("eth0", 3000, base.Add(2*time.Second))
	assert.True(t, ok)
	assert.InDelta(t, 1000.0, rate, 0.001)

	rate, ok = r.Rate("eth0", 500, base.Add(3*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 0.0, rate, "counter reset clamps to zero")

	_, ok = r.Rate("eth0", 900, base.Add(3*time.Second))
	assert.False(t, ok, "no elapsed time means no rate")
}

func TestRateTracker_NoiseFloor(t *testing.T) {
	base := time.Unix(0, 0)
	r := NewRateTracker(NoiseFloor)

	r.Rate("sda", 0, base)
	rate, ok := r.Rate("sda", 1024, base.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, 0.0, rate, "1 KiB/s is below the noise floor")

	rate, _ = r.Rate("sda", 1024+2*1024*1024, base.Add(2*time.Second))
	assert.InDelta(t, 2*1024*1024, rate, 0.001)
}

func TestRateTracker_Forget(t *testing.T) {
	base := time.Unix(0, 0)
	r := NewRateTracker(0)
	r.Rate("a", 1, base)
	r.Rate("b", 1, base)

	r.Forget(map[string]bool{"a": true})

	_, ok := r.Rate("b", 2, base.Add(time.Second))
	assert.False(t, ok, "forgotten key starts over")
	_, ok = r.Rate("a", 2, base.Add(time.Second))
	assert.True(t, ok)
}
