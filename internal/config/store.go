package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
)

const (
	// AppDirName is the directory under the user config dir.
	AppDirName = "ground-control"
	// FileName is the preferences file name.
	FileName = "config.json"
)

// DefaultPath returns the preferences file location:
// $XDG_CONFIG_HOME/ground-control/config.json, falling back to
// ~/.config/ground-control/config.json.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDirName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set $HOME or pass --config with an explicit path")
	}
	return filepath.Join(home, ".config", AppDirName, FileName), nil
}

// Store reads and writes AppConfig at a fixed path.
type Store struct {
	path string
	log  logger.Logger
}

// NewStore creates a store for path.
func NewStore(path string, log logger.Logger) *Store {
	return &Store{path: path, log: logger.OrDefault(log)}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config. It never fails startup: a missing, corrupt or
// wrong-version file yields Defaults together with a CONFIG_MISSING or
// CONFIG_CORRUPT error the caller may log.
func (s *Store) Load() (AppConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), errors.WrapWithCode(err, errors.ErrConfigMissing,
				"Config file not found, using defaults",
				"Toggle a widget or layout to create it, or run 'groundcontrol config'")
		}
		return Defaults(), errors.WrapWithCode(err, errors.ErrConfigCorrupt,
			"Config file could not be read, using defaults",
			"Check permissions on "+s.path)
	}
	return s.parse(data)
}

func (s *Store) parse(data []byte) (AppConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Defaults(), errors.New(errors.ErrConfigCorrupt,
			"Config file is empty, using defaults", "")
	}

	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return Defaults(), errors.WrapWithCode(err, errors.ErrConfigCorrupt,
			"Config file is not valid JSON, using defaults",
			"Fix "+s.path+" or run 'groundcontrol config reset'")
	}

	if f.Version != nil && *f.Version != SchemaVersion {
		return Defaults(), errors.New(errors.ErrConfigCorrupt,
			fmt.Sprintf("Config version %d is not supported (expected %d), using defaults", *f.Version, SchemaVersion),
			"The file will be rewritten with the current format on the next change")
	}

	cfg, notes := fromFile(f)
	for _, note := range notes {
		s.log.Warn("config: %s", note)
	}
	return cfg, nil
}

// Marshal renders cfg in the on-disk format.
func Marshal(cfg AppConfig) ([]byte, error) {
	data, err := json.MarshalIndent(toFile(cfg), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes cfg atomically: the data goes to a temp file in the same
// directory which is then renamed over the old file. A failure at any step
// leaves the previous file untouched.
func (s *Store) Save(cfg AppConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite, "Could not encode config", "")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite,
			"Could not create config directory", "Check permissions on "+dir)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite,
			"Could not create temp file for config", "Check permissions on "+dir)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapWithCode(err, errors.ErrConfigWrite, "Could not write config", "")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.WrapWithCode(err, errors.ErrConfigWrite, "Could not flush config", "")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite, "Could not close config", "")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite, "Could not set config permissions", "")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWrite,
			"Could not replace config file", "Check permissions on "+s.path)
	}

	success = true
	return nil
}

// EnsureExists creates the directory and a default file when missing.
func (s *Store) EnsureExists() (created bool, err error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access config file", "Check permissions on "+s.path)
	}

	if err := s.Save(Defaults()); err != nil {
		return false, err
	}
	return true, nil
}

// Editor returns the command used to edit the config: $VISUAL, then $EDITOR,
// then a platform default.
func Editor() string {
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "nano"
}
