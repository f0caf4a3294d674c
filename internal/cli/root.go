package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/ui"
)

// settingsViper holds flags, environment and defaults for runtime settings.
var settingsViper = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "groundcontrol",
	Short: "Terminal dashboard for local system telemetry",
	Long: `ground control shows live CPU, memory, disk, network, temperature and GPU
readings for this machine in a resizable terminal dashboard.

Keys: g/h/v switch grid, horizontal and vertical layouts, a toggles automatic
layout, c opens the widget panel, ? shows help, q quits. Layout and widget
choices are saved to the preferences file as you make them.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := Settings()
		if err != nil {
			return err
		}
		if s.NoColor || ui.ColorsDisabled() {
			ui.DisableColors()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := Settings()
		if err != nil {
			return err
		}
		return dashboardCommand(s)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyConfig, "", "preferences file (default $XDG_CONFIG_HOME/ground-control/config.json)")
	pf.String(config.KeyLogFile, "", "write logs to this file while the dashboard runs")
	pf.Bool(config.KeyNoColor, false, "disable colors")

	f := rootCmd.Flags()
	f.Duration(config.KeyInterval, config.DefaultInterval, "sampling interval")
	f.Int(config.KeyHistory, config.DefaultHistory, "samples of history kept per widget")
	f.Int(config.KeyStaleAfter, config.DefaultStaleAfter, "ticks without fresh data before a widget shows UNAV")

	bindFlags(settingsViper, pf, f)
}

// bindFlags binds every flag in sets into v under the flag's name.
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	for _, fs := range sets {
		fs.VisitAll(func(flag *pflag.Flag) {
			_ = v.BindPFlag(flag.Name, flag)
		})
	}
}

// Settings returns the validated runtime settings.
func Settings() (config.Settings, error) {
	return config.LoadSettings(settingsViper)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
