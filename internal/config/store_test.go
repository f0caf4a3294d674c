package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/widget"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), AppDirName, FileName), logger.Noop())
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, SchemaVersion, cfg.Version)
	assert.Equal(t, layout.Grid, cfg.Layout)
	assert.False(t, cfg.AutoLayout)
	for _, k := range source.AllKinds() {
		assert.True(t, cfg.Widgets[k], "%s visible by default", k)
		assert.Equal(t, widget.DefaultMode(k), cfg.Modes[k])
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	cfg := Defaults()
	cfg.Widgets[source.KindGPU] = false
	cfg.Widgets[source.KindTemperature] = false
	cfg.Layout = layout.Vertical
	cfg.Modes[source.KindCPU] = widget.ModePlot
	cfg.AutoLayout = true

	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Equal(loaded), "loaded %+v, saved %+v", loaded, cfg)
}

func TestStore_LoadMissingReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigMissing))
	assert.True(t, Defaults().Equal(cfg))
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"truncated", `{"version": 1, "widgets": {`},
		{"not json", "layout: grid"},
		{"wrong type", `{"widgets": ["cpu"]}`},
		{"future version", `{"version": 2, "layout": "vertical"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0o644))

			cfg, err := store.Load()
			require.Error(t, err)
			assert.Equal(t, errors.ErrConfigCorrupt, errors.CodeOf(err))
			assert.True(t, Defaults().Equal(cfg))
		})
	}
}

func TestStore_LoadPartialFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	content := `{
  "widgets": {"gpu": false, "sonar": true},
  "layout": "diagonal",
  "modes": {"disk": "numeric", "cpu": "pie"},
  "theme": "dark"
}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	log := logger.NewBufferLogger()
	store.log = log

	cfg, err := store.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Visible(source.KindGPU))
	assert.True(t, cfg.Visible(source.KindCPU), "absent widgets stay visible")
	assert.Equal(t, layout.Grid, cfg.Layout, "unknown layout falls back")
	assert.Equal(t, widget.ModeNumeric, cfg.Mode(source.KindDisk))
	assert.Equal(t, widget.DefaultMode(source.KindCPU), cfg.Mode(source.KindCPU))
	assert.Equal(t, 3, log.Count("warn"), "unknown widget, layout and mode are reported")
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(Defaults()))
	require.NoError(t, store.Save(Defaults()))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestStore_SaveFailureKeepsOldFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	store := newTestStore(t)
	require.NoError(t, store.Save(Defaults()))
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	dir := filepath.Dir(store.Path())
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	cfg := Defaults()
	cfg.Layout = layout.Horizontal
	err = store.Save(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigWrite))

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_WrittenFormat(t *testing.T) {
	store := newTestStore(t)
	cfg := Defaults()
	cfg.Layout = layout.Horizontal

	require.NoError(t, store.Save(cfg))
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"version": 1`)
	assert.Contains(t, string(data), `"layout": "horizontal"`)
	assert.Contains(t, string(data), `"cpu": true`)
	assert.NotContains(t, string(data), "auto_layout", "false is omitted")
}

func TestStore_EnsureExists(t *testing.T) {
	store := newTestStore(t)

	created, err := store.EnsureExists()
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, store.Path())

	created, err = store.EnsureExists()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "ground-control", "config.json"), path)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/pilot")
	path, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/pilot", ".config", "ground-control", "config.json"), path)
}

func TestEditor(t *testing.T) {
	t.Setenv("VISUAL", "code -w")
	t.Setenv("EDITOR", "vim")
	assert.Equal(t, "code -w", Editor())

	t.Setenv("VISUAL", "")
	assert.Equal(t, "vim", Editor())

	t.Setenv("EDITOR", "")
	assert.NotEmpty(t, Editor())
}

func TestAppConfig_CloneIsDeep(t *testing.T) {
	cfg := Defaults()
	clone := cfg.Clone()
	clone.Widgets[source.KindCPU] = false
	clone.Modes[source.KindCPU] = widget.ModeNumeric

	assert.True(t, cfg.Visible(source.KindCPU))
	assert.Equal(t, widget.DefaultMode(source.KindCPU), cfg.Mode(source.KindCPU))
	assert.False(t, cfg.Equal(clone))
}

func TestAppConfig_NormalizeFillsMissingKinds(t *testing.T) {
	cfg := AppConfig{Widgets: map[source.Kind]bool{source.KindDisk: false}}
	cfg.Normalize()

	assert.Equal(t, SchemaVersion, cfg.Version)
	assert.False(t, cfg.Visible(source.KindDisk))
	assert.Len(t, cfg.Widgets, len(source.AllKinds()))
	assert.Len(t, cfg.Modes, len(source.AllKinds()))
}

func TestAppConfig_Specs(t *testing.T) {
	cfg := Defaults()
	cfg.Widgets[source.KindNetwork] = false

	specs := cfg.Specs()
	require.Len(t, specs, len(source.AllKinds()))
	for i, k := range source.AllKinds() {
		assert.Equal(t, k, specs[i].Kind)
	}
	assert.False(t, specs[source.KindNetwork.Order()].Visible)
}
