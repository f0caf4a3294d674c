package source

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	_, ok := ParseKind("fan")
	assert.False(t, ok)
}

func TestAllKinds_ReturnsCopy(t *testing.T) {
	kinds := AllKinds()
	require.Len(t, kinds, 6)
	kinds[0] = "mutated"

	assert.Equal(t, KindCPU, AllKinds()[0])
}

func TestKindOrderAndTitle(t *testing.T) {
	assert.Equal(t, 0, KindCPU.Order())
	assert.Equal(t, 5, KindGPU.Order())
	assert.Equal(t, 6, Kind("fan").Order())
	assert.Equal(t, "Disk I/O", KindDisk.Title())
	assert.Equal(t, "fan", Kind("fan").Title())
}

func TestSampleNormalize(t *testing.T) {
	tests := []struct {
		name   string
		build  func(*Sample)
		expect Status
	}{
		{
			name: "all present",
			build: func(s *Sample) {
				s.Add("", "a", 1, "")
				s.Add("", "b", 2, "")
			},
			expect: StatusOK,
		},
		{
			name: "some missing",
			build: func(s *Sample) {
				s.Add("", "a", 1, "")
				s.Missing("", "b", "")
			},
			expect: StatusPartial,
		},
		{
			name: "all missing",
			build: func(s *Sample) {
				s.Missing("", "a", "")
			},
			expect: StatusUnavailable,
		},
		{
			name:   "no fields",
			build:  func(*Sample) {},
			expect: StatusUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sample{Kind: KindCPU}
			tt.build(&s)
			s.Normalize()
			assert.Equal(t, tt.expect, s.Status)
		})
	}
}

func TestUnavailableStaysUnavailable(t *testing.T) {
	s := Unavailable(KindGPU, time.Unix(10, 0), errors.New("no gpu"))
	s.Normalize()

	assert.Equal(t, StatusUnavailable, s.Status)
	assert.False(t, s.Available())
	assert.Equal(t, KindGPU, s.Kind)
	assert.EqualError(t, s.Err, "no gpu")
}

func TestSampleLookups(t *testing.T) {
	s := Sample{Kind: KindGPU}
	s.Add("gpu0", FieldUtil, 45, "%")
	s.Missing("gpu0", FieldPower, "W")
	s.Add("gpu1", FieldUtil, 10, "%")

	v, ok := s.Value("gpu0", FieldUtil)
	assert.True(t, ok)
	assert.Equal(t, 45.0, v)

	_, ok = s.Value("gpu0", FieldPower)
	assert.False(t, ok, "missing fields have no value")

	f, ok := s.Get("gpu0", FieldPower)
	assert.True(t, ok, "missing fields are still listed")
	assert.False(t, f.OK)

	_, ok = s.Get("gpu2", FieldUtil)
	assert.False(t, ok)

	assert.Equal(t, []string{"gpu0", "gpu1"}, s.Groups())
}

func TestGroupsWithPrefix_NaturalOrder(t *testing.T) {
	s := Sample{}
	for _, g := range []string{"core10", "core2", "core1", "ram"} {
		s.Add(g, FieldUsage, 1, "%")
	}

	assert.Equal(t, []string{"core1", "core2", "core10"}, s.GroupsWithPrefix("core"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "partial", StatusPartial.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	assert.Equal(t, "unknown", Status(9).String())
}
