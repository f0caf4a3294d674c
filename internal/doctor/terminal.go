package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Smallest terminal a panel can be drawn in with its frame and a value.
const (
	MinTerminalWidth  = 40
	MinTerminalHeight = 12
)

// TerminalCheck verifies that stdout is an interactive terminal of usable size.
type TerminalCheck struct {
	// FD is the descriptor to inspect; typically os.Stdout.
	FD int
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run(_ context.Context) CheckResult {
	if !term.IsTerminal(c.FD) {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Output is not a terminal",
			Suggestion: "Run groundcontrol directly in a terminal, not through a pipe or redirect",
		}
	}

	w, h, err := term.GetSize(c.FD)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Cannot read terminal size: %v", err),
		}
	}
	if w < MinTerminalWidth || h < MinTerminalHeight {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Terminal is %dx%d, panels will be cramped", w, h),
			Suggestion: fmt.Sprintf("Enlarge the window to at least %dx%d or hide some widgets", MinTerminalWidth, MinTerminalHeight),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Terminal is %dx%d", w, h),
	}
}

func (c *TerminalCheck) Fix() error { return nil }

// ColorCheck reports the color support detected from the environment.
type ColorCheck struct {
	// Profile overrides detection when set.
	Profile *termenv.Profile
}

func (c *ColorCheck) Name() string     { return "colors" }
func (c *ColorCheck) Category() string { return CategoryTerminal }

func (c *ColorCheck) Run(_ context.Context) CheckResult {
	profile := termenv.EnvColorProfile()
	if c.Profile != nil {
		profile = *c.Profile
	}

	switch profile {
	case termenv.TrueColor:
		return CheckResult{Status: StatusPass, Message: "True color supported"}
	case termenv.ANSI256:
		return CheckResult{Status: StatusPass, Message: "256 colors supported"}
	case termenv.ANSI:
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Only 16 colors available, gauges use approximate colors",
			Suggestion: "Set COLORTERM=truecolor if your terminal supports it",
		}
	default:
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Colors are disabled",
			Suggestion: "Unset NO_COLOR or check $TERM",
		}
	}
}

func (c *ColorCheck) Fix() error { return nil }

// NewTerminalChecks returns checks for the terminal on stdout.
func NewTerminalChecks() []Check {
	return []Check{
		&TerminalCheck{FD: int(os.Stdout.Fd())},
		&ColorCheck{},
	}
}
