package widget

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
)

func rect(w, h int) layout.Rect {
	return layout.Rect{Width: w, Height: h}
}

func assertExactSize(t *testing.T, out string, w, h int) {
	t.Helper()
	if w <= 0 || h <= 0 {
		assert.Empty(t, out)
		return
	}
	lines := strings.Split(out, "\n")
	require.Len(t, lines, h)
	for i, l := range lines {
		assert.Equal(t, w, ansi.StringWidth(l), "line %d: %q", i, ansi.Strip(l))
	}
}

// samples builds a representative reading for every kind.
func samples(ts time.Time, i int) map[source.Kind]source.Sample {
	v := float64(i%10) * 10

	mem := source.Sample{Kind: source.KindMemory, Timestamp: ts}
	mem.Add(source.GroupRAM, source.FieldUsed, 8<<30, "B")
	mem.Add(source.GroupRAM, source.FieldTotal, 16<<30, "B")
	mem.Add(source.GroupRAM, source.FieldAvailable, 8<<30, "B")
	mem.Add(source.GroupRAM, source.FieldPercent, 50, "%")
	mem.Missing(source.GroupSwap, source.FieldUsed, "B")
	mem.Missing(source.GroupSwap, source.FieldTotal, "B")
	mem.Missing(source.GroupSwap, source.FieldPercent, "%")
	mem.Add(source.TopProcessPrefix+"postgres (42)", source.FieldPercent, 12.5, "%")
	mem.Normalize()

	disk := source.Sample{Kind: source.KindDisk, Timestamp: ts}
	disk.Add("", source.FieldRead, v*1024*1024, "B/s")
	disk.Add("", source.FieldWrite, 2*1024*1024, "B/s")
	disk.Add(source.MountPrefix+"/", source.FieldUsed, 100<<30, "B")
	disk.Add(source.MountPrefix+"/", source.FieldTotal, 500<<30, "B")
	disk.Add(source.MountPrefix+"/", source.FieldPercent, 20, "%")
	disk.Normalize()

	net := source.Sample{Kind: source.KindNetwork, Timestamp: ts}
	net.Add("", source.FieldDownload, v*1000, "B/s")
	net.Add("", source.FieldUpload, 512, "B/s")
	net.Add("", source.FieldRecv, 1<<30, "B")
	net.Add("", source.FieldSent, 1<<20, "B")
	net.Normalize()

	temp := source.Sample{Kind: source.KindTemperature, Timestamp: ts}
	temp.Add(source.SensorPrefix+"coretemp_package_id_0", source.FieldTemp, 55+v/10, "°C")
	temp.Add("", source.FieldMax, 55+v/10, "°C")
	temp.Normalize()

	gpu := source.Sample{Kind: source.KindGPU, Timestamp: ts, Info: "[0] NVIDIA A100"}
	gpu.Add(source.GPUGroup(0), source.FieldUtil, v, "%")
	gpu.Add(source.GPUGroup(0), source.FieldMemUsed, 4<<30, "B")
	gpu.Add(source.GPUGroup(0), source.FieldMemTotal, 40<<30, "B")
	gpu.Add(source.GPUGroup(0), source.FieldTemp, 61, "°C")
	gpu.Missing(source.GPUGroup(0), source.FieldPower, "W")
	gpu.Normalize()

	return map[source.Kind]source.Sample{
		source.KindCPU:         cpuSample(ts, v),
		source.KindMemory:      mem,
		source.KindDisk:        disk,
		source.KindNetwork:     net,
		source.KindTemperature: temp,
		source.KindGPU:         gpu,
	}
}

func TestRender_ExactSizeForEveryKindAndMode(t *testing.T) {
	sizes := [][2]int{{80, 24}, {40, 12}, {27, 12}, {26, 8}, {12, 4}, {5, 3}, {3, 3}, {1, 1}, {20, 1}, {20, 2}, {0, 5}}

	for _, kind := range source.AllKinds() {
		for _, mode := range []DisplayMode{ModeNumeric, ModePlot, ModeGauge} {
			m := New(Spec{Kind: kind, Visible: true, Mode: mode}, 60)
			for i := 0; i < 20; i++ {
				ts := t0.Add(time.Duration(i) * time.Second)
				require.True(t, m.Apply(samples(ts, i)[kind]))
			}
			for _, sz := range sizes {
				t.Run(fmt.Sprintf("%s/%s/%dx%d", kind, mode, sz[0], sz[1]), func(t *testing.T) {
					assertExactSize(t, m.Render(rect(sz[0], sz[1])), sz[0], sz[1])
				})
			}
		}
	}
}

func TestRender_IsPure(t *testing.T) {
	m := New(Spec{Kind: source.KindNetwork, Visible: true, Mode: ModePlot}, 30)
	for i := 0; i < 10; i++ {
		m.Apply(samples(t0.Add(time.Duration(i)*time.Second), i)[source.KindNetwork])
	}

	first := m.Render(rect(60, 20))
	assert.Equal(t, first, m.Render(rect(60, 20)))
	assert.Equal(t, 10, m.Buffer().Len(), "rendering does not mutate history")
}

func TestRender_UnavailableShowsSentinel(t *testing.T) {
	m := New(Spec{Kind: source.KindGPU, Visible: true, Mode: ModeGauge}, 10)
	err := fmt.Errorf("%w: nvidia-smi not installed", source.ErrUnavailable)

	for i := 0; i < 5; i++ {
		m.Tick()
		require.True(t, m.Apply(source.Unavailable(source.KindGPU, t0.Add(time.Duration(i)*time.Second), err)))
		out := ansi.Strip(m.Render(rect(40, 10)))
		assert.Contains(t, out, source.SentinelText, "tick %d", i)
		assert.Contains(t, out, "nvidia-smi not installed")
	}
	assert.Equal(t, 0, m.Buffer().Len())
}

func TestRender_MissingFieldsShowSentinel(t *testing.T) {
	m := New(Spec{Kind: source.KindMemory, Visible: true, Mode: ModeNumeric}, 10)
	require.True(t, m.Apply(samples(t0, 1)[source.KindMemory]))

	out := ansi.Strip(m.Render(rect(50, 10)))
	assert.Contains(t, out, "RAM")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "Swap")
	assert.Contains(t, out, source.SentinelText, "missing swap renders the sentinel")
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "postgres (42)")
}

func TestRender_NumericContent(t *testing.T) {
	m := New(Spec{Kind: source.KindCPU, Visible: true, Mode: ModeNumeric}, 10)
	require.True(t, m.Apply(cpuSample(t0, 42)))

	out := ansi.Strip(m.Render(rect(50, 10)))
	assert.Contains(t, out, "CPU")
	assert.Contains(t, out, "Test CPU [2 cores]")
	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, "2.40 GHz")
	assert.Contains(t, out, "0.50")
}

func TestRender_GaugeDrawsBars(t *testing.T) {
	m := New(Spec{Kind: source.KindCPU, Visible: true, Mode: ModeGauge}, 10)
	require.True(t, m.Apply(cpuSample(t0, 50)))

	out := ansi.Strip(m.Render(rect(40, 8)))
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "░")
}

func TestRender_PlotUsesChartWhenTall(t *testing.T) {
	m := New(Spec{Kind: source.KindCPU, Visible: true, Mode: ModePlot}, 60, WithWindow(time.Minute))
	for i := 0; i < 30; i++ {
		m.Apply(cpuSample(t0.Add(time.Duration(i)*time.Second), float64(i*3)))
	}

	tall := m.Render(rect(60, 20))
	short := ansi.Strip(m.Render(rect(30, 6)))

	assertExactSize(t, tall, 60, 20)
	assert.Contains(t, short, "Total")
	assert.NotEqual(t, strings.Count(short, "⠀"), 0, "short panels draw a braille sparkline")
}

func TestReason(t *testing.T) {
	m := New(Spec{Kind: source.KindTemperature, Visible: true}, 10)
	m.Apply(source.Unavailable(source.KindTemperature, t0, errors.New("plain failure")))
	assert.Equal(t, "plain failure", m.reason())
}
