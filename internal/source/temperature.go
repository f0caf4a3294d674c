package source

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// Temperature field names and group prefixes.
const (
	FieldTemp = "temp"
	FieldMax  = "max"

	// SensorPrefix starts the group of each temperature sensor.
	SensorPrefix = "sensor:"
)

type temperatureBackend struct {
	sensors func(ctx context.Context) ([]host.TemperatureStat, error)
	now     func() time.Time
}

// TemperatureSource reports every readable temperature sensor.
type TemperatureSource struct {
	backend temperatureBackend
}

// NewTemperatureSource creates a temperature source backed by gopsutil.
func NewTemperatureSource() *TemperatureSource {
	return newTemperatureSource(temperatureBackend{
		sensors: host.SensorsTemperaturesWithContext,
		now:     time.Now,
	})
}

func newTemperatureSource(b temperatureBackend) *TemperatureSource {
	if b.now == nil {
		b.now = time.Now
	}
	return &TemperatureSource{backend: b}
}

// Kind implements Source.
func (s *TemperatureSource) Kind() Kind { return KindTemperature }

// Sample implements Source. gopsutil returns readings together with an error
// when only some sensors fail; that case is a partial sample.
func (s *TemperatureSource) Sample(ctx context.Context) (Sample, error) {
	temps, err := s.backend.sensors(ctx)
	if ctx.Err() != nil {
		return Sample{}, ctx.Err()
	}

	var readable []host.TemperatureStat
	for _, t := range temps {
		if t.Temperature > 0 {
			readable = append(readable, t)
		}
	}
	if len(readable) == 0 {
		if err != nil {
			return Sample{}, unavailable("temperature sensors: %v", err)
		}
		return Sample{}, unavailable("no temperature sensors")
	}

	sort.SliceStable(readable, func(i, j int) bool {
		return readable[i].SensorKey < readable[j].SensorKey
	})

	sample := Sample{Kind: KindTemperature, Timestamp: s.backend.now()}
	var hottest float64
	for _, t := range readable {
		sample.Add(SensorPrefix+t.SensorKey, FieldTemp, t.Temperature, "°C")
		if t.Temperature > hottest {
			hottest = t.Temperature
		}
	}
	sample.Add("", FieldMax, hottest, "°C")

	sample.Normalize()
	if err != nil {
		sample.Status = StatusPartial
		sample.Err = err
	}
	return sample, nil
}

// SensorLabel strips the group prefix from a sensor group.
func SensorLabel(group string) string {
	return strings.TrimPrefix(group, SensorPrefix)
}
