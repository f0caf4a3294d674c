package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ground-control/groundcontrol/internal/errors"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// GROUNDCONTROL_INTERVAL=500ms.
const EnvPrefix = "GROUNDCONTROL"

// Setting keys shared by viper, cobra flags and the environment.
const (
	KeyInterval   = "interval"
	KeyHistory    = "history"
	KeyStaleAfter = "stale-after"
	KeyLogFile    = "log-file"
	KeyConfig     = "config"
	KeyNoColor    = "no-color"
)

// Defaults for runtime settings.
const (
	DefaultInterval   = time.Second
	DefaultHistory    = 120
	DefaultStaleAfter = 5
)

// Settings are the per-run knobs. Unlike AppConfig they are never written
// back to disk.
type Settings struct {
	Interval    time.Duration `mapstructure:"interval" validate:"min=100ms,max=1m"`
	HistorySize int           `mapstructure:"history" validate:"min=2,max=3600"`
	StaleAfter  int           `mapstructure:"stale-after" validate:"min=1,max=1000"`
	LogFile     string        `mapstructure:"log-file"`
	ConfigPath  string        `mapstructure:"config"`
	NoColor     bool          `mapstructure:"no-color"`
}

var validate = validator.New()

// NewViper returns a viper instance with defaults and environment binding set
// up. Callers bind their flags on top.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// GROUNDCONTROL_LOG is the documented short form.
	_ = v.BindEnv(KeyLogFile, EnvPrefix+"_LOG", EnvPrefix+"_LOG_FILE")

	v.SetDefault(KeyInterval, DefaultInterval.String())
	v.SetDefault(KeyHistory, DefaultHistory)
	v.SetDefault(KeyStaleAfter, DefaultStaleAfter)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyConfig, "")
	v.SetDefault(KeyNoColor, false)
	return v
}

// LoadSettings reads and validates settings from v. An empty config path is
// resolved to DefaultPath.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid settings",
			"Check --interval is a duration like 500ms or 2s")
	}

	if err := ValidateSettings(s); err != nil {
		return Settings{}, err
	}

	if s.ConfigPath == "" {
		path, err := DefaultPath()
		if err != nil {
			return Settings{}, err
		}
		s.ConfigPath = path
	}
	return s, nil
}

// ValidateSettings checks the struct tags on Settings and reports the first
// offending setting in CLI terms.
func ValidateSettings(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid settings", "")
	}

	fe := validationErrors[0]
	flag := settingFlag(fe.Field())
	switch fe.Tag() {
	case "min":
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s is too small (got %v)", flag, fe.Value()),
			fmt.Sprintf("Use a value of at least %s", fe.Param()))
	case "max":
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s is too large (got %v)", flag, fe.Value()),
			fmt.Sprintf("Use a value of at most %s", fe.Param()))
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s is invalid", flag), "")
	}
}

func settingFlag(field string) string {
	switch field {
	case "Interval":
		return KeyInterval
	case "HistorySize":
		return KeyHistory
	case "StaleAfter":
		return KeyStaleAfter
	default:
		return strings.ToLower(field)
	}
}
