package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/doctor"
	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/ui"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the terminal, preferences and metric sources",
	Long: `Run diagnostics and report anything that would keep the dashboard from
working well: a missing or undersized terminal, an unreadable preferences
file, invalid settings, and metric sources this machine cannot read.

Exits non-zero when any check fails.

Examples:
  groundcontrol doctor
  groundcontrol doctor --fix
  groundcontrol doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := Settings()
		if err != nil {
			return err
		}
		return doctorCommand(cmd.Context(), s, source.DefaultSources(), cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(ctx context.Context, s config.Settings, reg *source.Registry, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store := config.NewStore(s.ConfigPath, logger.Noop())

	// Local checks are quick and ordered; sources can be slow, so probe them
	// together.
	local := append(doctor.NewTerminalChecks(), doctor.NewConfigChecks(store, s)...)
	sources := doctor.NewSourceChecks(reg, s.Interval)

	results := append(doctor.RunAll(ctx, local), doctor.RunAllParallel(ctx, sources)...)
	checks := append(local, sources...)

	if doctorFix {
		results = doctor.FixAll(ctx, checks, results)
	}

	var err error
	if doctorJSON {
		err = writeJSON(out, buildDoctorOutput(results))
	} else {
		err = outputDoctorText(out, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(results)
	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}
	for _, cat := range doctor.CategoryOrder {
		if len(grouped[cat]) == 0 {
			continue
		}
		output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(out io.Writer, results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	rows := make([]ui.DoctorCheckRow, 0, len(results))
	grouped := doctor.GroupByCategory(results)
	for _, cat := range doctor.CategoryOrder {
		for _, r := range grouped[cat] {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     r.Status.String(),
				Category:   r.Category,
				Message:    r.Message,
				Suggestion: r.Suggestion,
			})
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.RenderHeader(ui.HeaderInfo{Version: formatVersion(version), Tagline: "Diagnostic report"}))
	b.WriteString("\n")
	b.WriteString(ui.RenderDoctorReport(rows))

	if !doctor.HasIssues(results) {
		fmt.Fprintf(&b, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(&b, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
		if doctor.FixableCount(results) > 0 && !doctorFix {
			fmt.Fprintf(&b, "\n  Run with %s to attempt automatic fixes where possible.\n", mutedStyle.Render("--fix"))
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}
