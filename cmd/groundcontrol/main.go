package main

import (
	"fmt"
	"os"

	"github.com/ground-control/groundcontrol/internal/cli"
	"github.com/ground-control/groundcontrol/internal/errors"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2026-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode prints err and returns the process exit code. An ExitError has
// already reported itself.
func exitCode(err error) int {
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}
