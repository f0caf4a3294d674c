package config

import (
	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/widget"
)

// SchemaVersion is the config file format written by this build. Files with
// any other version are ignored in favour of defaults.
const SchemaVersion = 1

// AppConfig holds the persisted user preferences. The dashboard owns the
// single live copy; the saver receives clones.
type AppConfig struct {
	Version    int
	Widgets    map[source.Kind]bool
	Layout     layout.Variant
	Modes      map[source.Kind]widget.DisplayMode
	AutoLayout bool
}

// Defaults returns grid layout with every widget visible in its default mode.
func Defaults() AppConfig {
	cfg := AppConfig{
		Version: SchemaVersion,
		Widgets: make(map[source.Kind]bool),
		Layout:  layout.Grid,
		Modes:   make(map[source.Kind]widget.DisplayMode),
	}
	for _, k := range source.AllKinds() {
		cfg.Widgets[k] = true
		cfg.Modes[k] = widget.DefaultMode(k)
	}
	return cfg
}

// Normalize fills every kind missing from Widgets or Modes with its default
// and pins the version.
func (c *AppConfig) Normalize() {
	c.Version = SchemaVersion
	if c.Widgets == nil {
		c.Widgets = make(map[source.Kind]bool)
	}
	if c.Modes == nil {
		c.Modes = make(map[source.Kind]widget.DisplayMode)
	}
	for _, k := range source.AllKinds() {
		if _, ok := c.Widgets[k]; !ok {
			c.Widgets[k] = true
		}
		if _, ok := c.Modes[k]; !ok {
			c.Modes[k] = widget.DefaultMode(k)
		}
	}
}

// Clone returns a deep copy.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.Widgets = make(map[source.Kind]bool, len(c.Widgets))
	for k, v := range c.Widgets {
		out.Widgets[k] = v
	}
	out.Modes = make(map[source.Kind]widget.DisplayMode, len(c.Modes))
	for k, v := range c.Modes {
		out.Modes[k] = v
	}
	return out
}

// Equal reports whether two configs describe the same preferences.
func (c AppConfig) Equal(o AppConfig) bool {
	if c.Version != o.Version || c.Layout != o.Layout || c.AutoLayout != o.AutoLayout {
		return false
	}
	if len(c.Widgets) != len(o.Widgets) || len(c.Modes) != len(o.Modes) {
		return false
	}
	for k, v := range c.Widgets {
		if ov, ok := o.Widgets[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range c.Modes {
		if ov, ok := o.Modes[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Visible reports whether kind is shown. Unknown kinds default to visible.
func (c AppConfig) Visible(kind source.Kind) bool {
	v, ok := c.Widgets[kind]
	return !ok || v
}

// Mode returns the display mode for kind.
func (c AppConfig) Mode(kind source.Kind) widget.DisplayMode {
	if m, ok := c.Modes[kind]; ok {
		return m
	}
	return widget.DefaultMode(kind)
}

// Specs returns a widget spec per kind in canonical order.
func (c AppConfig) Specs() []widget.Spec {
	kinds := source.AllKinds()
	specs := make([]widget.Spec, 0, len(kinds))
	for _, k := range kinds {
		specs = append(specs, widget.Spec{Kind: k, Visible: c.Visible(k), Mode: c.Mode(k)})
	}
	return specs
}

// fileConfig is the on-disk JSON shape. Pointers distinguish absent fields
// from zero values.
type fileConfig struct {
	Version    *int              `json:"version,omitempty"`
	Widgets    map[string]bool   `json:"widgets,omitempty"`
	Layout     string            `json:"layout,omitempty"`
	Modes      map[string]string `json:"modes,omitempty"`
	AutoLayout bool              `json:"auto_layout,omitempty"`
}

func toFile(c AppConfig) fileConfig {
	version := SchemaVersion
	out := fileConfig{
		Version:    &version,
		Widgets:    make(map[string]bool, len(c.Widgets)),
		Layout:     c.Layout.String(),
		Modes:      make(map[string]string, len(c.Modes)),
		AutoLayout: c.AutoLayout,
	}
	for k, v := range c.Widgets {
		out.Widgets[string(k)] = v
	}
	for k, v := range c.Modes {
		out.Modes[string(k)] = v.String()
	}
	return out
}

// fromFile converts the on-disk shape, keeping defaults for anything absent or
// unrecognized. The returned notes describe ignored values.
func fromFile(f fileConfig) (AppConfig, []string) {
	cfg := Defaults()
	var notes []string

	for name, visible := range f.Widgets {
		kind, ok := source.ParseKind(name)
		if !ok {
			notes = append(notes, "ignoring unknown widget "+name)
			continue
		}
		cfg.Widgets[kind] = visible
	}

	if f.Layout != "" {
		if v, err := layout.ParseVariant(f.Layout); err == nil {
			cfg.Layout = v
		} else {
			notes = append(notes, err.Error())
		}
	}

	for name, mode := range f.Modes {
		kind, ok := source.ParseKind(name)
		if !ok {
			notes = append(notes, "ignoring mode for unknown widget "+name)
			continue
		}
		if m, err := widget.ParseDisplayMode(mode); err == nil {
			cfg.Modes[kind] = m
		} else {
			notes = append(notes, err.Error())
		}
	}

	cfg.AutoLayout = f.AutoLayout
	return cfg, notes
}
