package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/widget"
)

const emptyMessage = "No widgets visible. Press c to configure."

// render builds the screen. Once the terminal size has settled the output is
// exactly width cells by height lines.
func (m *Model) render() string {
	if !m.sized {
		return "initializing…"
	}
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	body := m.bodySize()
	var content string
	switch {
	case m.showHelp:
		content = m.renderHelpOverlay(body)
	case m.panel == PanelVisible:
		content = m.renderPanel(body)
	default:
		content = m.renderBody(body)
	}

	out := []string{m.renderHeader()}
	if body.Height > 0 {
		out = append(out, fitBlock(content, body.Width, body.Height))
	}
	if m.height > headerHeight {
		out = append(out, m.renderFooter())
	}
	return fitBlock(strings.Join(out, "\n"), m.width, m.height)
}

// renderHeader shows the title, active layout and clock.
func (m *Model) renderHeader() string {
	title := titleStyle.Render("ground control")

	variant := m.variant().String()
	if m.cfg.AutoLayout {
		variant += " (auto)"
	}
	status := fmt.Sprintf(" | %s | %d/%d widgets", variant, len(m.widgets.VisibleKinds()), len(m.widgets.Kinds()))
	clock := ""
	if !m.now.IsZero() {
		clock = m.now.Format("15:04:05")
	}

	left := title + statusStyle.Render(status)
	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(clock)
	if gap < 1 {
		return headerStyle.Render(fitLine(left, m.width))
	}
	return headerStyle.Render(left + strings.Repeat(" ", gap) + mutedStyle.Render(clock))
}

// renderFooter shows the clickable layout switcher followed by key hints.
func (m *Model) renderFooter() string {
	current := m.variant()

	var parts []string
	for _, v := range []layout.Variant{layout.Grid, layout.Horizontal, layout.Vertical} {
		style := layoutStyle
		if v == current && !m.cfg.AutoLayout {
			style = layoutActiveStyle
		}
		parts = append(parts, m.zones.Mark(layoutZone(v), style.Render(v.String())))
	}
	autoStyle := layoutStyle
	if m.cfg.AutoLayout {
		autoStyle = layoutActiveStyle
	}
	parts = append(parts, m.zones.Mark(zoneLayoutAuto, autoStyle.Render("auto")))

	switcher := strings.Join(parts, "")
	used := ansi.StringWidth(switcher)
	if used > m.width {
		return fitLine(switcher, m.width)
	}

	hints := ""
	if room := m.width - used - 2; room > 0 {
		m.help.Width = room
		hints = "  " + m.help.ShortHelpView(keys.ShortHelp())
	}
	return switcher + hints
}

// renderBody lays the visible panels out row by row. Trailing grid cells with
// no panel are left blank.
func (m *Model) renderBody(size layout.Size) string {
	if m.result.Empty() {
		return lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center,
			mutedStyle.Render(emptyMessage))
	}

	rows := make([][]string, m.result.Rows)
	heights := make([]int, m.result.Rows)
	used := make([]int, m.result.Rows)
	for _, p := range m.result.Placements {
		w, ok := m.widgets.Get(source.Kind(p.ID))
		if !ok || p.Rect.Width <= 0 || p.Rect.Height <= 0 {
			continue
		}
		rows[p.Row] = append(rows[p.Row], w.Render(p.Rect))
		heights[p.Row] = p.Rect.Height
		used[p.Row] += p.Rect.Width
	}

	var blocks []string
	for i, row := range rows {
		if heights[i] == 0 {
			continue
		}
		if rest := size.Width - used[i]; rest > 0 {
			row = append(row, blank(rest, heights[i]))
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// renderPanel draws the widget configuration list centered over the body.
func (m *Model) renderPanel(size layout.Size) string {
	lines := []string{overlayTitleStyle.Render("Widgets")}
	for i, w := range m.widgets.All() {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("▸ ")
		}
		check := disabledStyle.Render("[ ]")
		if w.Visible() {
			check = enabledStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %-12s %s", pointer, check, w.Kind().Title(), modeStyle.Render(w.Mode().String()))
		lines = append(lines, m.zones.Mark(panelZone(w.Kind()), line))
	}
	lines = append(lines, "", m.help.ShortHelpView(keys.panelHelp()))

	return lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center,
		overlayStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(widget.ColorDarkBg))
}

// renderHelpOverlay draws the full key reference centered over the body.
func (m *Model) renderHelpOverlay(size layout.Size) string {
	h := m.help
	h.ShowAll = true
	h.Width = 0
	content := overlayTitleStyle.Render("Keyboard Shortcuts") + "\n" +
		h.View(keys) + "\n\n" +
		mutedStyle.Render("Press ? to close")

	return lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center,
		overlayStyle.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(widget.ColorDarkBg))
}

func blank(w, h int) string {
	line := strings.Repeat(" ", w)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// fitLine truncates or pads s to exactly w cells.
func fitLine(s string, w int) string {
	if n := ansi.StringWidth(s); n > w {
		return ansi.Truncate(s, w, "")
	} else if n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// fitBlock clips or pads s to exactly w by h cells.
func fitBlock(s string, w, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = fitLine(line, w)
	}
	return strings.Join(lines, "\n")
}
