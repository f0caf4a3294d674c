package cli

import (
	"context"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/dashboard"
	"github.com/ground-control/groundcontrol/internal/errors"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/source"
)

// dashboardCommand runs the dashboard until the user quits.
func dashboardCommand(s config.Settings) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New(errors.ErrTerminal,
			"groundcontrol needs an interactive terminal",
			"Run it directly in a terminal window, not through a pipe or redirect.")
	}

	closeLog, err := setupLogging(s.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.NewEnvLogger("[groundcontrol]")
	logger.SetDefault(log)

	store := config.NewStore(s.ConfigPath, log)
	cfg, err := store.Load()
	if err != nil {
		log.Warn("%s: %s", errors.CodeOf(err), errorSummary(err))
	}

	saver := config.NewSaver(store, config.WithSaveLogger(log))
	defer func() {
		if err := saver.Close(); err != nil {
			log.Error("saving config: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher dashboard.Watcher
	if w, err := config.NewWatcher(store, cfg, log); err != nil {
		log.Warn("not watching %s for changes: %v", store.Path(), err)
	} else {
		go w.Run(ctx)
		defer w.Close()
		watcher = w
	}

	model := dashboard.New(dashboard.Options{
		Registry:   source.DefaultSources(),
		Config:     cfg,
		Saver:      saver,
		Watcher:    watcher,
		Interval:   s.Interval,
		History:    s.HistorySize,
		StaleAfter: s.StaleAfter,
		Logger:     log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"The dashboard stopped unexpectedly",
			"Run 'groundcontrol doctor' to check the terminal.")
	}
	return nil
}

// setupLogging points the standard logger at path, or discards log output
// when no path is given, so nothing writes over the dashboard.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := tea.LogToFile(path, "groundcontrol")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file "+path,
			"Check that --log-file points to a writable location.")
	}
	return func() {
		_ = f.Close()
		log.SetOutput(os.Stderr)
	}, nil
}
