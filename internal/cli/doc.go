// Package cli implements the groundcontrol command-line interface.
//
// The root command runs the dashboard. Subcommands cover the preferences file
// and diagnostics:
//
//	groundcontrol                  - Run the dashboard
//	groundcontrol config           - Open the preferences file in $EDITOR
//	groundcontrol config path      - Print the preferences file location
//	groundcontrol config show      - Print the effective preferences
//	groundcontrol config reset     - Restore default preferences
//	groundcontrol doctor           - Check terminal, config and metric sources
//	groundcontrol version          - Print version information
//	groundcontrol completion       - Generate shell completions
//
// # Settings
//
// Runtime settings (--interval, --history, --stale-after, --log-file,
// --config, --no-color) are bound into viper, so each can also be set
// through the environment with the GROUNDCONTROL_ prefix, for example
// GROUNDCONTROL_INTERVAL=500ms. Flags win over the environment.
//
// # Errors
//
// Commands return structured errors from internal/errors; main prints them
// and maps them to exit codes. An errors.ExitError carries a specific code
// without printing anything.
package cli
