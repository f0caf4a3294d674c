package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ground-control/groundcontrol/internal/widget"
)

var (
	headerStyle = lipgloss.NewStyle().Background(widget.ColorSurfaceBg)
	titleStyle  = lipgloss.NewStyle().Foreground(widget.ColorAccent).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(widget.ColorTextSecondary)
	mutedStyle  = lipgloss.NewStyle().Foreground(widget.ColorTextMuted)

	layoutStyle       = lipgloss.NewStyle().Foreground(widget.ColorTextSecondary).Padding(0, 1)
	layoutActiveStyle = lipgloss.NewStyle().Foreground(widget.ColorTextPrimary).Background(widget.ColorAccent).Bold(true).Padding(0, 1)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(widget.ColorAccent).
			Background(widget.ColorSurfaceBg).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Foreground(widget.ColorAccent).
				Bold(true).
				MarginBottom(1)

	cursorStyle   = lipgloss.NewStyle().Foreground(widget.ColorAccent).Bold(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(widget.ColorHealthy)
	disabledStyle = lipgloss.NewStyle().Foreground(widget.ColorTextMuted)
	modeStyle     = lipgloss.NewStyle().Foreground(widget.ColorGraph)
)
