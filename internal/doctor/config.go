package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/errors"
)

// ConfigFileCheck verifies that the preferences file exists.
type ConfigFileCheck struct {
	Store *config.Store
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	info, err := os.Stat(c.Store.Path())
	switch {
	case os.IsNotExist(err):
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file yet, defaults are in use",
			Suggestion: "It is created on the first layout or widget change; --fix writes the defaults now",
			Fixable:    true,
		}
	case err != nil:
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot access %s: %v", c.Store.Path(), err),
			Suggestion: "Check the permissions on the config directory",
		}
	case info.IsDir():
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is a directory", c.Store.Path()),
			Suggestion: "Remove it or point --config somewhere else",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", c.Store.Path()),
	}
}

func (c *ConfigFileCheck) Fix() error {
	_, err := c.Store.EnsureExists()
	return err
}

// ConfigParseCheck verifies that the preferences file can be read back.
type ConfigParseCheck struct {
	Store *config.Store
}

func (c *ConfigParseCheck) Name() string     { return "config_parse" }
func (c *ConfigParseCheck) Category() string { return CategoryConfig }

func (c *ConfigParseCheck) Run(_ context.Context) CheckResult {
	cfg, err := c.Store.Load()
	switch {
	case err == nil:
		visible := 0
		for _, v := range cfg.Widgets {
			if v {
				visible++
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("Config is valid (%s layout, %d of %d widgets visible)", cfg.Layout, visible, len(cfg.Widgets)),
		}
	case errors.IsCode(err, errors.ErrConfigMissing):
		return CheckResult{
			Status:  StatusPass,
			Message: "Using default preferences",
		}
	default:
		return CheckResult{
			Status:     StatusFail,
			Message:    err.Error(),
			Suggestion: "Run 'groundcontrol config reset' or fix the file by hand",
			Fixable:    true,
		}
	}
}

// Fix replaces an unreadable file with the defaults.
func (c *ConfigParseCheck) Fix() error {
	return c.Store.Save(config.Defaults())
}

// SettingsCheck validates the runtime settings from flags and environment.
type SettingsCheck struct {
	Settings config.Settings
}

func (c *SettingsCheck) Name() string     { return "settings" }
func (c *SettingsCheck) Category() string { return CategoryConfig }

func (c *SettingsCheck) Run(_ context.Context) CheckResult {
	if err := config.ValidateSettings(c.Settings); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    err.Error(),
			Suggestion: fmt.Sprintf("Adjust the flag or its %s_* environment variable", config.EnvPrefix),
		}
	}
	return CheckResult{
		Status: StatusPass,
		Message: fmt.Sprintf("Sampling every %s, %d samples of history, stale after %d ticks",
			c.Settings.Interval, c.Settings.HistorySize, c.Settings.StaleAfter),
	}
}

func (c *SettingsCheck) Fix() error { return nil }

// NewConfigChecks returns the config-related checks.
func NewConfigChecks(store *config.Store, settings config.Settings) []Check {
	return []Check{
		&ConfigFileCheck{Store: store},
		&ConfigParseCheck{Store: store},
		&SettingsCheck{Settings: settings},
	}
}
