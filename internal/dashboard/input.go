package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
)

// Clickable regions.
const (
	zoneLayoutPrefix = "layout-"
	zoneLayoutAuto   = "layout-auto"
	zonePanelPrefix  = "panel-"
)

func layoutZone(v layout.Variant) string { return zoneLayoutPrefix + v.String() }

func panelZone(kind source.Kind) string { return zonePanelPrefix + string(kind) }

// HandleKeyMsg processes keyboard input. It reports whether the key was
// bound to anything.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return true, m.quit()
	}

	// Help toggle takes priority; Esc closes it.
	if key.Matches(msg, keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, keys.Close) {
		m.showHelp = false
		return true, nil
	}

	if m.panel == PanelVisible {
		if handled := m.handlePanelKey(msg); handled {
			return true, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Grid):
		m.setLayout(layout.Grid)
	case key.Matches(msg, keys.Horizontal):
		m.setLayout(layout.Horizontal)
	case key.Matches(msg, keys.Vertical):
		m.setLayout(layout.Vertical)
	case key.Matches(msg, keys.Auto):
		m.toggleAuto()
	case key.Matches(msg, keys.Config):
		m.togglePanel()
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) bool {
	kinds := m.widgets.Kinds()
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(kinds)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		if m.cursor < len(kinds) {
			m.toggleWidget(kinds[m.cursor])
		}
	case key.Matches(msg, keys.Mode):
		if m.cursor < len(kinds) {
			m.cycleMode(kinds[m.cursor])
		}
	case key.Matches(msg, keys.Close):
		m.panel = PanelHidden
	default:
		return false
	}
	return true
}

func (m *Model) togglePanel() {
	if m.panel == PanelVisible {
		m.panel = PanelHidden
		return
	}
	m.panel = PanelVisible
	m.showHelp = false
}

// handleMouse maps a left click on a marked region to the same action as its
// key binding.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	if m.zones.Get(zoneLayoutAuto).InBounds(msg) {
		m.toggleAuto()
		return nil
	}
	for _, v := range []layout.Variant{layout.Grid, layout.Horizontal, layout.Vertical} {
		if m.zones.Get(layoutZone(v)).InBounds(msg) {
			m.setLayout(v)
			return nil
		}
	}

	if m.panel != PanelVisible {
		return nil
	}
	for i, kind := range m.widgets.Kinds() {
		if m.zones.Get(panelZone(kind)).InBounds(msg) {
			m.cursor = i
			m.toggleWidget(kind)
			return nil
		}
	}
	return nil
}
