package widget

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/ground-control/groundcontrol/internal/source"
)

// FormatValue renders a value in its unit: IEC sizes for bytes and rates,
// one decimal for percentages and plain numbers otherwise.
func FormatValue(v float64, unit string) string {
	switch unit {
	case "B":
		return formatBytes(v)
	case "B/s":
		return formatBytes(v) + "/s"
	case "%":
		return fmt.Sprintf("%.1f%%", v)
	case "MHz":
		if v >= 1000 {
			return fmt.Sprintf("%.2f GHz", v/1000)
		}
		return fmt.Sprintf("%.0f MHz", v)
	case "°C":
		return fmt.Sprintf("%.1f°C", v)
	case "W":
		return fmt.Sprintf("%.1f W", v)
	case "":
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.1f %s", v, unit)
	}
}

// FormatField renders a field, or the sentinel when it was not read.
func FormatField(f source.Field) string {
	if !f.OK {
		return source.SentinelText
	}
	return FormatValue(f.Value, f.Unit)
}

func formatBytes(v float64) string {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	return humanize.IBytes(uint64(v))
}
