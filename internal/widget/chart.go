package widget

import (
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/ground-control/groundcontrol/internal/timeseries"
)

// Minimum body size for the axis chart; smaller plots use the sparkline.
const (
	chartMinWidth  = 24
	chartMinHeight = 6
)

var (
	chartAxisStyle  = lipgloss.NewStyle().Foreground(ColorBorder)
	chartLabelStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
)

// canChart reports whether a body of w x h cells is large enough for axes.
func canChart(w, h int) bool {
	return w >= chartMinWidth && h >= chartMinHeight
}

// renderChart draws points as a braille line chart with time and value axes.
// The window spans window back from the newest point so the x axis does not
// jump while the buffer fills. Returns exactly h lines of w cells.
func renderChart(points []timeseries.Point, w, h int, window time.Duration, scale Scale, format func(float64) string, color lipgloss.Color) []string {
	end := time.Now()
	if len(points) > 0 {
		end = points[len(points)-1].Time
	}
	start := end.Add(-window)

	chart := timeserieslinechart.New(w, h,
		timeserieslinechart.WithTimeRange(start, end),
		timeserieslinechart.WithYRange(scale.Min, scale.Max),
		timeserieslinechart.WithAxesStyles(chartAxisStyle, chartLabelStyle),
		timeserieslinechart.WithStyle(lipgloss.NewStyle().Foreground(color)),
		timeserieslinechart.WithXLabelFormatter(timeserieslinechart.HourTimeLabelFormatter()),
		timeserieslinechart.WithYLabelFormatter(func(_ int, v float64) string {
			return format(v)
		}),
		timeserieslinechart.WithXYSteps(2, 2),
	)
	for _, p := range points {
		if p.Time.Before(start) {
			continue
		}
		chart.Push(timeserieslinechart.TimePoint{Time: p.Time, Value: p.Value})
	}
	chart.SetViewTimeRange(start, end)
	chart.DrawBraille()

	lines := strings.Split(chart.View(), "\n")
	out := make([]string, h)
	for i := range out {
		if i < len(lines) {
			out[i] = fit(lines[i], w)
		} else {
			out[i] = strings.Repeat(" ", w)
		}
	}
	return out
}
