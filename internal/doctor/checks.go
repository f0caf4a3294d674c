// Package doctor runs the environment diagnostics behind `groundcontrol doctor`:
// whether the terminal can host the dashboard, whether the preferences file
// is usable, and which metric sources this machine can actually read.
package doctor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Categories, in report order.
const (
	CategoryTerminal = "TERMINAL"
	CategoryConfig   = "CONFIG"
	CategorySources  = "SOURCES"
)

// CategoryOrder is the order categories are reported in.
var CategoryOrder = []string{CategoryTerminal, CategoryConfig, CategorySources}

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON reports.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"`
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Category() string

	// Run executes the check. Checks that touch the system honor ctx.
	Run(ctx context.Context) CheckResult

	// Fix attempts to repair the issue. Checks that cannot fix anything
	// return nil.
	Fix() error
}

// RunAll executes checks one at a time.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = run(ctx, check)
	}
	return results
}

// RunAllParallel executes checks concurrently. Results keep the order of
// checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	g, ctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = run(ctx, check)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func run(ctx context.Context, c Check) CheckResult {
	res := c.Run(ctx)
	if res.Name == "" {
		res.Name = c.Name()
	}
	if res.Category == "" {
		res.Category = c.Category()
	}
	return res
}

// FixAll tries to fix every fixable issue and re-runs the checks it fixed.
func FixAll(ctx context.Context, checks []Check, results []CheckResult) []CheckResult {
	for i, result := range results {
		if !result.Fixable || result.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err == nil {
			results[i] = run(ctx, checks[i])
		}
	}
	return results
}

// GroupByCategory organizes results by category.
func GroupByCategory(results []CheckResult) map[string][]CheckResult {
	grouped := make(map[string][]CheckResult)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.Status != StatusPass {
			count++
		}
	}
	return count
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
