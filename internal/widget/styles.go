package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Panel palette.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

// Severity thresholds for percentage metrics.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	borderStyle   = lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle    = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(ColorGraph)
	labelStyle    = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	valueStyle    = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(ColorTextMuted)
	sentinelStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
)

// MetricColor maps a percentage to green, amber or red.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a foreground style for a percentage.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// cardTop renders the top border with the title on the left and a value on
// the right: ╭─ Title ───────── value ╮. The result is exactly width cells.
func cardTop(title, value string, width int) string {
	if width < 2 {
		return strings.Repeat(" ", max(width, 0))
	}
	inner := width - 2
	if inner < 4 {
		return borderStyle.Render("╭" + strings.Repeat("─", inner) + "╮")
	}
	left := "─ " + title + " "
	right := ""
	if value != "" {
		right = " " + value + " "
	}

	// Drop the value first, then shorten the title.
	if ansi.StringWidth(left)+ansi.StringWidth(right) > inner {
		right = ""
	}
	if ansi.StringWidth(left) > inner {
		left = ansi.Truncate(left, inner, "…")
	}
	fill := inner - ansi.StringWidth(left) - ansi.StringWidth(right)

	var b strings.Builder
	b.WriteString(borderStyle.Render("╭"))
	b.WriteString(borderStyle.Render("─"))
	if len(left) > len("─") {
		b.WriteString(titleStyle.Render(strings.TrimPrefix(left, "─")))
	}
	b.WriteString(borderStyle.Render(strings.Repeat("─", fill)))
	if right != "" {
		b.WriteString(infoStyle.Render(right))
	}
	b.WriteString(borderStyle.Render("╮"))
	return b.String()
}

// cardBottom renders ╰────╯ at exactly width cells.
func cardBottom(width int) string {
	if width < 2 {
		return strings.Repeat(" ", max(width, 0))
	}
	return borderStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// cardLine renders │ content │ at exactly width cells, truncating or padding
// the content as needed.
func cardLine(content string, width int) string {
	if width < 2 {
		return strings.Repeat(" ", max(width, 0))
	}
	pad := 1
	if width < 4 {
		pad = 0
	}
	inner := width - 2 - 2*pad
	return borderStyle.Render("│") + strings.Repeat(" ", pad) +
		fit(content, inner) +
		strings.Repeat(" ", pad) + borderStyle.Render("│")
}

// fit truncates or right-pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "…")
		w = ansi.StringWidth(s)
	}
	return s + strings.Repeat(" ", width-w)
}

// center places s in the middle of width cells.
func center(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return fit(s, width)
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// innerWidth is the content width of a card of the given outer width.
func innerWidth(width int) int {
	if width < 4 {
		return max(width-2, 0)
	}
	return width - 4
}
