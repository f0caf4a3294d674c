package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-control/groundcontrol/internal/errors"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultInterval, s.Interval)
	assert.Equal(t, DefaultHistory, s.HistorySize)
	assert.Equal(t, DefaultStaleAfter, s.StaleAfter)
	assert.False(t, s.NoColor)
	assert.Contains(t, s.ConfigPath, "ground-control")
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("GROUNDCONTROL_INTERVAL", "250ms")
	t.Setenv("GROUNDCONTROL_STALE_AFTER", "3")
	t.Setenv("GROUNDCONTROL_CONFIG", "/tmp/gc.json")
	t.Setenv("GROUNDCONTROL_LOG", "/tmp/gc.log")

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gc.log", s.LogFile)

	assert.Equal(t, 250*time.Millisecond, s.Interval)
	assert.Equal(t, 3, s.StaleAfter)
	assert.Equal(t, "/tmp/gc.json", s.ConfigPath)
}

func TestLoadSettings_OverrideWins(t *testing.T) {
	v := NewViper()
	v.Set(KeyHistory, 300)

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 300, s.HistorySize)
}

func TestValidateSettings(t *testing.T) {
	valid := Settings{Interval: time.Second, HistorySize: 120, StaleAfter: 5}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"interval too short", func(s *Settings) { s.Interval = 10 * time.Millisecond }, "--interval is too small"},
		{"interval too long", func(s *Settings) { s.Interval = time.Hour }, "--interval is too large"},
		{"history too small", func(s *Settings) { s.HistorySize = 1 }, "--history is too small"},
		{"stale after zero", func(s *Settings) { s.StaleAfter = 0 }, "--stale-after is too small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
