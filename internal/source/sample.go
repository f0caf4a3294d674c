package source

import (
	"sort"
	"time"
)

// SentinelText is displayed in place of any value that could not be read.
const SentinelText = "UNAV"

// Kind identifies one telemetry stream. The set is closed.
type Kind string

const (
	KindCPU         Kind = "cpu"
	KindMemory      Kind = "memory"
	KindDisk        Kind = "disk"
	KindNetwork     Kind = "network"
	KindTemperature Kind = "temperature"
	KindGPU         Kind = "gpu"
)

var allKinds = []Kind{KindCPU, KindMemory, KindDisk, KindNetwork, KindTemperature, KindGPU}

// AllKinds returns every kind in canonical display order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind converts a config key into a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Title returns the panel heading for the kind.
func (k Kind) Title() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindMemory:
		return "Memory"
	case KindDisk:
		return "Disk I/O"
	case KindNetwork:
		return "Network"
	case KindTemperature:
		return "Temperature"
	case KindGPU:
		return "GPU"
	default:
		return string(k)
	}
}

// Order returns the canonical position of the kind, or len(AllKinds) for
// unknown kinds.
func (k Kind) Order() int {
	for i, known := range allKinds {
		if known == k {
			return i
		}
	}
	return len(allKinds)
}

// Status summarizes how much of a sample could be read.
type Status int

const (
	StatusOK Status = iota
	StatusPartial
	StatusUnavailable
)

// String returns a human-readable status string.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Field is one named scalar inside a sample. OK is false when the value could
// not be read; Value is meaningless in that case.
type Field struct {
	Group string
	Name  string
	Value float64
	Unit  string
	OK    bool
}

// Sample is one reading of a metric stream.
type Sample struct {
	Kind      Kind
	Timestamp time.Time
	Status    Status
	Info      string
	Fields    []Field
	Err       error
}

// Unavailable builds the sentinel sample for a kind.
func Unavailable(kind Kind, ts time.Time, err error) Sample {
	return Sample{
		Kind:      kind,
		Timestamp: ts,
		Status:    StatusUnavailable,
		Err:       err,
	}
}

// Add appends a present field.
func (s *Sample) Add(group, name string, value float64, unit string) {
	s.Fields = append(s.Fields, Field{Group: group, Name: name, Value: value, Unit: unit, OK: true})
}

// Missing appends a field that could not be read.
func (s *Sample) Missing(group, name, unit string) {
	s.Fields = append(s.Fields, Field{Group: group, Name: name, Unit: unit})
}

// Normalize derives Status from the fields: all present is OK, some present is
// Partial, none present is Unavailable. An already unavailable sample stays so.
func (s *Sample) Normalize() {
	if s.Status == StatusUnavailable {
		return
	}
	present, missing := 0, 0
	for _, f := range s.Fields {
		if f.OK {
			present++
		} else {
			missing++
		}
	}
	switch {
	case present == 0:
		s.Status = StatusUnavailable
	case missing > 0:
		s.Status = StatusPartial
	default:
		s.Status = StatusOK
	}
}

// Available reports whether the sample carries any data.
func (s Sample) Available() bool {
	return s.Status != StatusUnavailable
}

// Get looks up a field by group and name.
func (s Sample) Get(group, name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Group == group && f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns a field's value and whether it was read.
func (s Sample) Value(group, name string) (float64, bool) {
	f, ok := s.Get(group, name)
	if !ok || !f.OK {
		return 0, false
	}
	return f.Value, true
}

// Groups returns the distinct non-empty groups in first-seen order.
func (s Sample) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, f := range s.Fields {
		if f.Group == "" || seen[f.Group] {
			continue
		}
		seen[f.Group] = true
		groups = append(groups, f.Group)
	}
	return groups
}

// GroupsWithPrefix returns groups starting with prefix, sorted naturally by
// the numeric suffix when there is one (core2 before core10).
func (s Sample) GroupsWithPrefix(prefix string) []string {
	var out []string
	for _, g := range s.Groups() {
		if len(g) >= len(prefix) && g[:len(prefix)] == prefix {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
