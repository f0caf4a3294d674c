package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap is the dashboard's dispatch table. It also feeds the help views.
type keyMap struct {
	Horizontal key.Binding
	Vertical   key.Binding
	Grid       key.Binding
	Auto       key.Binding
	Config     key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Config panel only.
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Mode   key.Binding
	Close  key.Binding
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grid, k.Horizontal, k.Vertical, k.Auto, k.Config, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Grid, k.Horizontal, k.Vertical, k.Auto},
		{k.Config, k.Up, k.Down, k.Toggle, k.Mode, k.Close},
		{k.Help, k.Quit},
	}
}

// panelHelp returns the bindings shown at the bottom of the config panel.
func (k keyMap) panelHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Mode, k.Close}
}

var keys = keyMap{
	Horizontal: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "horizontal")),
	Vertical:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vertical")),
	Grid:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grid")),
	Auto:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto layout")),
	Config:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "configure")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "show/hide")),
	Mode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle mode")),
	Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}
