package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ground-control/groundcontrol/internal/source"
)

// SourceCheck takes one sample from a metric source.
type SourceCheck struct {
	Source  source.Source
	Timeout time.Duration
}

func (c *SourceCheck) Name() string     { return "source_" + string(c.Source.Kind()) }
func (c *SourceCheck) Category() string { return CategorySources }

func (c *SourceCheck) Run(ctx context.Context) CheckResult {
	kind := c.Source.Kind()
	start := time.Now()
	sample, err := source.Probe(ctx, c.Source, c.Timeout)
	elapsed := time.Since(start)

	switch {
	case err == nil:
	case source.IsUnavailable(err):
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s: not available on this machine (%v)", kind.Title(), err),
			Suggestion: "The panel will show " + source.SentinelText + "; hide it from the config panel if you don't need it",
		}
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: no answer within %s", kind.Title(), c.Timeout),
			Suggestion: "Raise --interval so slow sources have time to respond",
		}
	default:
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s: %v", kind.Title(), err),
		}
	}

	if sample.Status == source.StatusPartial {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s: partially readable, %d of %d fields (%s)", kind.Title(), present(sample), len(sample.Fields), elapsed.Round(time.Millisecond)),
		}
	}

	msg := fmt.Sprintf("%s: ok (%s)", kind.Title(), elapsed.Round(time.Millisecond))
	if sample.Info != "" {
		msg = fmt.Sprintf("%s: %s (%s)", kind.Title(), sample.Info, elapsed.Round(time.Millisecond))
	}
	return CheckResult{Status: StatusPass, Message: msg}
}

func (c *SourceCheck) Fix() error { return nil }

func present(s source.Sample) int {
	n := 0
	for _, f := range s.Fields {
		if f.OK {
			n++
		}
	}
	return n
}

// NewSourceChecks returns one check per registered source.
func NewSourceChecks(reg *source.Registry, timeout time.Duration) []Check {
	var checks []Check
	for _, kind := range reg.Kinds() {
		src, _ := reg.Get(kind)
		checks = append(checks, &SourceCheck{Source: src, Timeout: timeout})
	}
	return checks
}
