package source

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/net"
)

// Network field names.
const (
	FieldDownload = "download"
	FieldUpload   = "upload"
	FieldRecv     = "recv_total"
	FieldSent     = "sent_total"
)

type networkBackend struct {
	counters func(ctx context.Context) ([]net.IOCountersStat, error)
	now      func() time.Time
}

// NetworkSource reports download and upload throughput summed over all
// interfaces.
type NetworkSource struct {
	backend networkBackend
	rates   *RateTracker
}

// NewNetworkSource creates a network source backed by gopsutil.
func NewNetworkSource() *NetworkSource {
	return newNetworkSource(networkBackend{
		counters: func(ctx context.Context) ([]net.IOCountersStat, error) {
			return net.IOCountersWithContext(ctx, false)
		},
		now: time.Now,
	})
}

func newNetworkSource(b networkBackend) *NetworkSource {
	if b.now == nil {
		b.now = time.Now
	}
	return &NetworkSource{backend: b, rates: NewRateTracker(NoiseFloor)}
}

// Kind implements Source.
func (s *NetworkSource) Kind() Kind { return KindNetwork }

// Sample implements Source. The first sample only carries the cumulative
// totals; rates appear once there is a previous reading to diff against.
func (s *NetworkSource) Sample(ctx context.Context) (Sample, error) {
	stats, err := s.backend.counters(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Sample{}, ctx.Err()
		}
		return Sample{}, unavailable("network counters: %v", err)
	}
	if len(stats) == 0 {
		return Sample{}, unavailable("network counters: no interfaces")
	}

	var recv, sent uint64
	for _, st := range stats {
		recv += st.BytesRecv
		sent += st.BytesSent
	}

	now := s.backend.now()
	sample := Sample{Kind: KindNetwork, Timestamp: now}

	if rate, ok := s.rates.Rate(FieldDownload, recv, now); ok {
		sample.Add("", FieldDownload, rate, "B/s")
	} else {
		sample.Missing("", FieldDownload, "B/s")
	}
	if rate, ok := s.rates.Rate(FieldUpload, sent, now); ok {
		sample.Add("", FieldUpload, rate, "B/s")
	} else {
		sample.Missing("", FieldUpload, "B/s")
	}
	sample.Add("", FieldRecv, float64(recv), "B")
	sample.Add("", FieldSent, float64(sent), "B")

	sample.Normalize()
	return sample, nil
}
