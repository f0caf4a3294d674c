package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GPU field names.
const (
	FieldUtil     = "util"
	FieldMemUsed  = "mem_used"
	FieldMemTotal = "mem_total"
	FieldPower    = "power"

	// GPUPrefix starts the group of each GPU device.
	GPUPrefix = "gpu"
)

// nvidiaSMIArgs queries one CSV line per device:
// index, name, utilization.gpu, memory.used, memory.total, temperature.gpu, power.draw
var nvidiaSMIArgs = []string{
	"--query-gpu=index,name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw",
	"--format=csv,noheader,nounits",
}

const nvidiaSMIColumns = 7

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// GPUSource reports per-device utilization, memory, temperature and power
// from nvidia-smi.
type GPUSource struct {
	runner Runner
	binary string
	now    func() time.Time
}

// NewGPUSource creates a GPU source that shells out to nvidia-smi.
func NewGPUSource() *GPUSource {
	return NewGPUSourceWithRunner(execRunner{})
}

// NewGPUSourceWithRunner creates a GPU source using the given runner.
func NewGPUSourceWithRunner(r Runner) *GPUSource {
	return &GPUSource{runner: r, binary: "nvidia-smi", now: time.Now}
}

// Kind implements Source.
func (s *GPUSource) Kind() Kind { return KindGPU }

// Sample implements Source.
func (s *GPUSource) Sample(ctx context.Context) (Sample, error) {
	out, err := s.runner.Run(ctx, s.binary, nvidiaSMIArgs...)
	if ctx.Err() != nil {
		return Sample{}, ctx.Err()
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Sample{}, unavailable("%s not installed", s.binary)
		}
		return Sample{}, unavailable("%s: %v", s.binary, err)
	}

	devices, err := ParseNvidiaSMI(string(out))
	if err != nil {
		return Sample{}, unavailable("%v", err)
	}
	if len(devices) == 0 {
		return Sample{}, unavailable("no GPU devices")
	}

	sample := Sample{Kind: KindGPU, Timestamp: s.now()}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		group := GPUGroup(d.Index)
		names = append(names, fmt.Sprintf("[%d] %s", d.Index, d.Name))
		addOptional(&sample, group, FieldUtil, d.Util, "%")
		addOptional(&sample, group, FieldMemUsed, d.MemUsed, "B")
		addOptional(&sample, group, FieldMemTotal, d.MemTotal, "B")
		addOptional(&sample, group, FieldTemp, d.Temp, "°C")
		addOptional(&sample, group, FieldPower, d.Power, "W")
	}
	sample.Info = strings.Join(names, ", ")
	sample.Normalize()
	return sample, nil
}

// GPUGroup returns the field group for a device index.
func GPUGroup(index int) string {
	return fmt.Sprintf("%s%d", GPUPrefix, index)
}

func addOptional(s *Sample, group, name string, v *float64, unit string) {
	if v == nil {
		s.Missing(group, name, unit)
		return
	}
	s.Add(group, name, *v, unit)
}

// GPUDevice is one parsed nvidia-smi row. Nil fields were reported as not
// available by the driver.
type GPUDevice struct {
	Index    int
	Name     string
	Util     *float64
	MemUsed  *float64
	MemTotal *float64
	Temp     *float64
	Power    *float64
}

// ParseNvidiaSMI parses the CSV produced by nvidia-smi with the query in
// nvidiaSMIArgs. Empty output or a driver message such as "No devices were
// found" yields no devices and no error. Rows with too few columns are an
// error; unparseable numeric columns are treated as not available.
func ParseNvidiaSMI(output string) ([]GPUDevice, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	lower := strings.ToLower(output)
	if strings.Contains(lower, "no devices") ||
		strings.Contains(lower, "has failed") ||
		strings.Contains(lower, "not found") {
		return nil, nil
	}

	var devices []GPUDevice
	for lineNo, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) < nvidiaSMIColumns {
			return nil, fmt.Errorf("nvidia-smi line %d has %d fields, expected %d", lineNo+1, len(cols), nvidiaSMIColumns)
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		idx, err := strconv.Atoi(cols[0])
		if err != nil {
			idx = len(devices)
		}

		d := GPUDevice{
			Index: idx,
			Name:  cols[1],
			Util:  parseOptional(cols[2], 1),
			Temp:  parseOptional(cols[5], 1),
			Power: parseOptional(cols[6], 1),
		}
		// Memory is reported in MiB.
		d.MemUsed = parseOptional(cols[3], 1024*1024)
		d.MemTotal = parseOptional(cols[4], 1024*1024)
		devices = append(devices, d)
	}
	return devices, nil
}

// parseOptional parses a numeric column, returning nil for "[N/A]",
// "[Not Supported]" and other non-numeric values.
func parseOptional(s string, scale float64) *float64 {
	if s == "" || strings.HasPrefix(s, "[") || strings.EqualFold(s, "N/A") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v *= scale
	return &v
}
