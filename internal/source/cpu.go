package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

// CPU field names.
const (
	FieldUsage  = "usage"
	FieldFreq   = "freq"
	FieldLoad1  = "load1"
	FieldLoad5  = "load5"
	FieldLoad15 = "load15"
)

// CoreGroup returns the field group for a logical core.
func CoreGroup(i int) string {
	return fmt.Sprintf("core%d", i)
}

type cpuBackend struct {
	percent func(ctx context.Context) ([]float64, error)
	info    func(ctx context.Context) ([]cpu.InfoStat, error)
	load    func(ctx context.Context) (*load.AvgStat, error)
	now     func() time.Time
}

// CPUSource reports per-core utilization and frequency, the model name and
// load averages.
type CPUSource struct {
	backend cpuBackend
	model   string
}

// NewCPUSource creates a CPU source backed by gopsutil.
func NewCPUSource() *CPUSource {
	return newCPUSource(cpuBackend{
		percent: func(ctx context.Context) ([]float64, error) {
			// A zero interval compares against the previous call, so the
			// sampler's cadence becomes the measurement window.
			return cpu.PercentWithContext(ctx, 0, true)
		},
		info: cpu.InfoWithContext,
		load: load.AvgWithContext,
		now:  time.Now,
	})
}

func newCPUSource(b cpuBackend) *CPUSource {
	if b.now == nil {
		b.now = time.Now
	}
	return &CPUSource{backend: b}
}

// Kind implements Source.
func (s *CPUSource) Kind() Kind { return KindCPU }

// Sample implements Source.
func (s *CPUSource) Sample(ctx context.Context) (Sample, error) {
	percents, err := s.backend.percent(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Sample{}, ctx.Err()
		}
		return Sample{}, unavailable("cpu usage: %v", err)
	}
	if len(percents) == 0 {
		return Sample{}, unavailable("cpu usage: no cores reported")
	}

	sample := Sample{Kind: KindCPU, Timestamp: s.backend.now()}

	var total float64
	for _, p := range percents {
		total += p
	}
	sample.Add("", FieldUsage, total/float64(len(percents)), "%")

	infos, infoErr := s.backend.info(ctx)
	if infoErr == nil && len(infos) > 0 && s.model == "" {
		s.model = modelName(infos)
	}
	for i, p := range percents {
		group := CoreGroup(i)
		sample.Add(group, FieldUsage, p, "%")
		switch {
		case infoErr != nil || len(infos) == 0:
			sample.Missing(group, FieldFreq, "MHz")
		case len(infos) == len(percents):
			sample.Add(group, FieldFreq, infos[i].Mhz, "MHz")
		default:
			// Some platforms report one entry per package.
			sample.Add(group, FieldFreq, infos[0].Mhz, "MHz")
		}
	}

	if avg, err := s.backend.load(ctx); err == nil && avg != nil {
		sample.Add("", FieldLoad1, avg.Load1, "")
		sample.Add("", FieldLoad5, avg.Load5, "")
		sample.Add("", FieldLoad15, avg.Load15, "")
	} else {
		sample.Missing("", FieldLoad1, "")
		sample.Missing("", FieldLoad5, "")
		sample.Missing("", FieldLoad15, "")
	}

	model := s.model
	if model == "" {
		model = "CPU"
	}
	sample.Info = fmt.Sprintf("%s [%d cores]", model, len(percents))
	sample.Normalize()
	return sample, nil
}

// modelName joins the distinct model names reported for each socket.
func modelName(infos []cpu.InfoStat) string {
	seen := make(map[string]bool)
	var names []string
	for _, info := range infos {
		name := strings.TrimSpace(info.ModelName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
