package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns pack a 2x4 dot matrix into one cell:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (bits 0, 3)
//	Row 1:   ⠂      ⠐     (bits 1, 4)
//	Row 2:   ⠄      ⠠     (bits 2, 5)
//	Row 3:   ⡀      ⢀     (bits 6, 7)
const brailleBase = '⠀'

var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Scale is the value range a graph maps onto its height.
type Scale struct {
	Min, Max float64
	// Percent colors each column by severity instead of a fixed color.
	Percent bool
}

// PercentScale is the fixed 0-100 range.
var PercentScale = Scale{Min: 0, Max: 100, Percent: true}

// AutoScale fits the range to data, starting at zero for non-negative
// series so rates do not exaggerate small changes.
func AutoScale(data []float64) Scale {
	if len(data) == 0 {
		return Scale{Min: 0, Max: 1}
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo >= 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return Scale{Min: lo, Max: hi}
}

func (s Scale) normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	n := (v - s.Min) / (s.Max - s.Min)
	return min(max(n, 0), 1)
}

// Sparkline renders data as a braille area graph of width x height cells.
// Each cell holds two samples side by side; fewer samples than the graph
// holds are right-aligned so the newest value is always at the right edge.
func Sparkline(data []float64, width, height int, scale Scale, color lipgloss.Color) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	totalDots := height * 4
	target := width * 2
	points := data
	if len(points) > target {
		points = resample(points, target)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colMax := make([]float64, width)

	offset := target - len(points)
	for i, v := range points {
		dots := clampInt(int(scale.normalize(v)*float64(totalDots)+0.5), totalDots)
		col := (i + offset) / 2
		sub := (i + offset) % 2
		if v > colMax[col] {
			colMax[col] = v
		}
		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1 << brailleDots[3-d%4][sub])
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			fg := color
			if scale.Percent {
				fg = MetricColor(colMax[c])
			}
			b.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return lines
}

// MiniSparkline renders one row of block characters.
func MiniSparkline(data []float64, width int, scale Scale) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	points := data
	if len(points) > width {
		points = resample(points, width)
	}
	var b strings.Builder
	for _, v := range points {
		idx := clampInt(int(scale.normalize(v)*float64(len(sparkBlocks)-1)), len(sparkBlocks)-1)
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// GradientBar renders a horizontal bar whose filled cells shade from green
// to red by position.
func GradientBar(width int, percent float64) string {
	if width < 1 {
		return ""
	}
	percent = min(max(percent, 0), 100)
	filled := clampInt(int(percent/100*float64(width)+0.5), width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			b.WriteString(lipgloss.NewStyle().Foreground(MetricColor(pos)).Render("█"))
		} else {
			b.WriteString(mutedStyle.Render("░"))
		}
	}
	return b.String()
}

// resample shrinks data to size points, keeping the peak of each bucket so
// spikes survive downsampling.
func resample(data []float64, size int) []float64 {
	if len(data) == 0 || size <= 0 {
		return nil
	}
	if len(data) <= size {
		return data
	}

	out := make([]float64, size)
	bucket := float64(len(data)) / float64(size)
	for i := range out {
		start := int(float64(i) * bucket)
		end := min(int(float64(i+1)*bucket), len(data))
		if start >= end {
			start = end - 1
		}
		peak := data[start]
		for _, v := range data[start+1 : end] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}

func clampInt(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
