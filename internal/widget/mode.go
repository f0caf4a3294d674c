package widget

import (
	"fmt"
	"strings"

	"github.com/ground-control/groundcontrol/internal/source"
)

// DisplayMode selects how a panel presents its metric.
type DisplayMode int

const (
	ModeNumeric DisplayMode = iota
	ModePlot
	ModeGauge
)

var modeNames = []string{"numeric", "plot", "gauge"}

// String returns the config spelling of the mode.
func (m DisplayMode) String() string {
	if m < ModeNumeric || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseDisplayMode converts a config value into a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s {
			return DisplayMode(i), nil
		}
	}
	return ModeNumeric, fmt.Errorf("unknown display mode %q (expected numeric, plot or gauge)", s)
}

// Next cycles numeric, plot, gauge and back.
func (m DisplayMode) Next() DisplayMode {
	return DisplayMode((int(m) + 1) % len(modeNames))
}

// DefaultMode is the mode a panel starts in when the config names none.
func DefaultMode(kind source.Kind) DisplayMode {
	switch kind {
	case source.KindCPU, source.KindMemory, source.KindGPU:
		return ModeGauge
	case source.KindDisk, source.KindNetwork:
		return ModePlot
	default:
		return ModeNumeric
	}
}

// Spec is the user-controlled configuration of one panel.
type Spec struct {
	Kind    source.Kind
	Visible bool
	Mode    DisplayMode
}

// ID is the layout identifier of the panel.
func (s Spec) ID() string {
	return string(s.Kind)
}
