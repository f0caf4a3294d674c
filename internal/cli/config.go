package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/ui"
)

var (
	configShowYAML  bool
	configShowTable bool
	configResetYes  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the preferences file in your editor",
	Long: `Open the preferences file in $VISUAL or $EDITOR (nano when neither is set).
The file and its directory are created with defaults first if missing.

A running dashboard picks up saved changes automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		return editConfig(store, config.Editor(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the preferences file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := Settings()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.ConfigPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective preferences",
	Long: `Print the preferences the dashboard would start with: the file's contents
with defaults filled in for anything missing or unreadable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		return showConfig(store, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		if !configResetYes {
			ok, err := confirmReset(store.Path())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed.")
				return nil
			}
		}
		if err := store.Save(config.Defaults()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Preferences reset: %s\n", ui.SymbolSuccess, store.Path())
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "print as YAML")
	configShowCmd.Flags().BoolVar(&configShowTable, "table", false, "print widgets as a table")
	configResetCmd.Flags().BoolVarP(&configResetYes, "yes", "y", false, "skip the confirmation prompt")

	configCmd.AddCommand(configPathCmd, configShowCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)
}

func newStore() (*config.Store, error) {
	s, err := Settings()
	if err != nil {
		return nil, err
	}
	return config.NewStore(s.ConfigPath, logger.Noop()), nil
}

// editConfig creates the file when missing and runs editor on it. The editor
// string may carry arguments, e.g. "code --wait".
func editConfig(store *config.Store, editor string, in io.Reader, out, errOut io.Writer) error {
	created, err := store.EnsureExists()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Created %s\n", store.Path())
	}

	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return errors.New(errors.ErrEditor, "No editor configured", "Set $EDITOR, e.g. export EDITOR=vim")
	}
	c := exec.Command(parts[0], append(parts[1:], store.Path())...)
	c.Stdin = in
	c.Stdout = out
	c.Stderr = errOut
	if err := c.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrEditor,
			fmt.Sprintf("Editor '%s' failed", editor),
			"Set $VISUAL or $EDITOR to an editor that is installed.")
	}
	return nil
}

// showView is the printed form of the preferences.
type showView struct {
	Path       string            `json:"path" yaml:"path"`
	Layout     string            `json:"layout" yaml:"layout"`
	AutoLayout bool              `json:"auto_layout" yaml:"auto_layout"`
	Widgets    map[string]bool   `json:"widgets" yaml:"widgets"`
	Modes      map[string]string `json:"modes" yaml:"modes"`
}

func newShowView(path string, cfg config.AppConfig) showView {
	v := showView{
		Path:       path,
		Layout:     cfg.Layout.String(),
		AutoLayout: cfg.AutoLayout,
		Widgets:    make(map[string]bool),
		Modes:      make(map[string]string),
	}
	for _, k := range source.AllKinds() {
		v.Widgets[string(k)] = cfg.Visible(k)
		v.Modes[string(k)] = cfg.Mode(k).String()
	}
	return v
}

func showConfig(store *config.Store, out, errOut io.Writer) error {
	cfg, err := store.Load()
	if err != nil && !errors.IsCode(err, errors.ErrConfigMissing) {
		fmt.Fprintf(errOut, "%s %s\n", ui.SymbolFail, errorSummary(err))
	}
	view := newShowView(store.Path(), cfg)

	switch {
	case configShowTable:
		var rows [][]string
		for _, k := range source.AllKinds() {
			visible := "no"
			if cfg.Visible(k) {
				visible = "yes"
			}
			rows = append(rows, []string{k.Title(), visible, cfg.Mode(k).String()})
		}
		fmt.Fprintln(out, ui.RenderSimpleTable([]ui.TableColumn{
			{Title: "Widget", Width: 14},
			{Title: "Visible", Width: 8},
			{Title: "Mode", Width: 8},
		}, rows))
		fmt.Fprintf(out, "layout: %s (auto: %t)\n", view.Layout, view.AutoLayout)
		return nil

	case configShowYAML:
		data, err := yaml.Marshal(view)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Could not encode config", "")
		}
		_, err = out.Write(data)
		return err
	}

	return writeJSON(out, view)
}

// writeJSON prints v as indented JSON, colored when out is a terminal.
func writeJSON(out io.Writer, v interface{}) error {
	if isTerminal(out) && !ui.ColorsDisabled() {
		data, err := prettyjson.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func confirmReset(path string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrTerminal,
			"Cannot ask for confirmation without a terminal",
			"Pass --yes to reset without prompting.")
	}

	var ok bool
	err := huh.NewConfirm().
		Title("Reset ground control preferences?").
		Description("Overwrites " + path + " with the defaults.").
		Affirmative("Reset").
		Negative("Cancel").
		Value(&ok).
		Run()
	if stderrors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrTerminal, "Confirmation prompt failed", "Pass --yes to skip it.")
	}
	return ok, nil
}

// errorSummary returns the one-line message of a structured error.
func errorSummary(err error) string {
	var gcErr *errors.Error
	if stderrors.As(err, &gcErr) {
		return gcErr.Message
	}
	return err.Error()
}
