package widget

import (
	"github.com/ground-control/groundcontrol/internal/source"
)

// Widgets is the ordered set of panels, one per kind.
type Widgets struct {
	order  []source.Kind
	models map[source.Kind]*Model
}

// NewWidgets builds a panel per spec. Specs are kept in canonical kind
// order regardless of input order.
func NewWidgets(specs []Spec, capacity int, opts ...Option) *Widgets {
	w := &Widgets{models: make(map[source.Kind]*Model, len(specs))}
	bySpec := make(map[source.Kind]Spec, len(specs))
	for _, s := range specs {
		bySpec[s.Kind] = s
	}
	for _, k := range source.AllKinds() {
		s, ok := bySpec[k]
		if !ok {
			continue
		}
		w.order = append(w.order, k)
		w.models[k] = New(s, capacity, opts...)
	}
	return w
}

// Get returns the panel for a kind.
func (w *Widgets) Get(kind source.Kind) (*Model, bool) {
	m, ok := w.models[kind]
	return m, ok
}

// All returns every panel in display order.
func (w *Widgets) All() []*Model {
	out := make([]*Model, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.models[k])
	}
	return out
}

// Kinds returns every kind in display order.
func (w *Widgets) Kinds() []source.Kind {
	out := make([]source.Kind, len(w.order))
	copy(out, w.order)
	return out
}

// VisibleKinds returns the kinds of shown panels in display order.
func (w *Widgets) VisibleKinds() []source.Kind {
	var out []source.Kind
	for _, k := range w.order {
		if w.models[k].Visible() {
			out = append(out, k)
		}
	}
	return out
}

// Visible returns the layout ids of shown panels in display order.
func (w *Widgets) Visible() []string {
	kinds := w.VisibleKinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// Apply routes a sample to its panel.
func (w *Widgets) Apply(s source.Sample) bool {
	m, ok := w.models[s.Kind]
	if !ok {
		return false
	}
	return m.Apply(s)
}

// Tick advances staleness on every visible panel.
func (w *Widgets) Tick() {
	for _, k := range w.order {
		w.models[k].Tick()
	}
}

// Sync applies visibility and modes from specs, activating or deactivating
// buffers as needed. It reports whether visibility changed.
func (w *Widgets) Sync(specs []Spec) bool {
	changed := false
	for _, s := range specs {
		m, ok := w.models[s.Kind]
		if !ok {
			continue
		}
		if m.Visible() != s.Visible {
			m.SetVisible(s.Visible)
			changed = true
		}
		m.SetMode(s.Mode)
	}
	return changed
}
