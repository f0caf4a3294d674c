// Package dashboard is the interactive terminal UI.
//
// Model is a Bubble Tea model and owns all mutable dashboard state: the
// preferences, the panels with their history, and the sampler's in-flight
// set. Three producers feed it messages: the sampling ticker and its jobs,
// terminal input, and terminal resizes. Sampling jobs run as Bubble Tea
// commands and report back as messages, so no state is shared with them.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ground-control/groundcontrol/internal/config"
	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/logger"
	"github.com/ground-control/groundcontrol/internal/sampler"
	"github.com/ground-control/groundcontrol/internal/source"
	"github.com/ground-control/groundcontrol/internal/widget"
)

// ResizeDebounce is how long the terminal size must hold still before the
// layout is recomputed.
const ResizeDebounce = 100 * time.Millisecond

// Rows reserved outside the panel area.
const (
	headerHeight = 1
	footerHeight = 1
)

// PanelState is the config panel's visibility.
type PanelState int

const (
	PanelHidden PanelState = iota
	PanelVisible
)

// Saver persists preferences off the update loop. *config.Saver satisfies it.
type Saver interface {
	Schedule(config.AppConfig)
	Flush() error
	Cancel()
}

// Watcher reports preference changes made elsewhere. *config.Watcher
// satisfies it.
type Watcher interface {
	Changes() <-chan config.AppConfig
	SetLast(config.AppConfig)
}

// Options configures a Model.
type Options struct {
	Registry   *source.Registry
	Config     config.AppConfig
	Saver      Saver
	Watcher    Watcher
	Interval   time.Duration
	History    int
	StaleAfter int
	// Timeout bounds a single sample; zero uses Interval.
	Timeout time.Duration
	Logger  logger.Logger
}

// Model is the dashboard state.
type Model struct {
	cfg     config.AppConfig
	widgets *widget.Widgets
	sampler *sampler.Sampler
	saver   Saver
	watcher Watcher
	log     logger.Logger

	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	// Settled terminal size and the latest unsettled one.
	width, height int
	sized         bool
	pending       layout.Size
	resizeSeq     int

	result     layout.Result
	recomputes int

	panel    PanelState
	cursor   int
	showHelp bool
	quitting bool
	now      time.Time

	zones *zone.Manager
	help  help.Model
}

// tickMsg starts a sampling round.
type tickMsg time.Time

// sampleMsg carries a finished sampling job.
type sampleMsg struct {
	result sampler.Result
}

// resizeSettledMsg fires ResizeDebounce after a resize. Only the one
// carrying the latest sequence number applies.
type resizeSettledMsg struct {
	seq int
}

// configChangedMsg carries preferences changed outside the dashboard.
type configChangedMsg struct {
	cfg config.AppConfig
}

// New creates the dashboard.
func New(opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = opts.Interval
	}
	if opts.History <= 0 {
		opts.History = config.DefaultHistory
	}
	if opts.Registry == nil {
		opts.Registry = source.DefaultSources()
	}
	log := logger.OrDefault(opts.Logger)

	cfg := opts.Config.Clone()
	cfg.Normalize()

	ctx, cancel := context.WithCancel(context.Background())
	h := help.New()
	h.ShortSeparator = " · "

	return &Model{
		cfg: cfg,
		widgets: widget.NewWidgets(cfg.Specs(), opts.History,
			widget.WithStaleAfter(opts.StaleAfter),
			widget.WithWindow(time.Duration(opts.History)*opts.Interval)),
		sampler: sampler.New(opts.Registry,
			sampler.WithTimeout(opts.Timeout),
			sampler.WithLogger(log)),
		saver:    opts.Saver,
		watcher:  opts.Watcher,
		log:      log,
		interval: opts.Interval,
		ctx:      ctx,
		cancel:   cancel,
		zones:    zone.New(),
		help:     h,
	}
}

// Init starts the ticker, takes a first sample immediately and begins
// listening for external config changes.
func (m *Model) Init() tea.Cmd {
	now := time.Now()
	m.now = now
	cmds := append(m.dispatch(now), m.tickCmd(), m.watchCmd())
	return tea.Batch(cmds...)
}

// Update handles one message to completion.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if _, cmd := m.HandleKeyMsg(msg); cmd != nil {
			return m, cmd
		}
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.pending = layout.Size{Width: msg.Width, Height: msg.Height}
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(ResizeDebounce, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		m.width, m.height = m.pending.Width, m.pending.Height
		m.sized = true
		m.help.Width = m.width
		m.recompute()
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		now := time.Time(msg)
		m.now = now
		m.widgets.Tick()
		cmds := append(m.dispatch(now), m.tickCmd())
		return m, tea.Batch(cmds...)

	case sampleMsg:
		sample, ok := m.sampler.Complete(msg.result)
		if ok && !m.quitting {
			m.widgets.Apply(sample)
		}
		return m, nil

	case configChangedMsg:
		m.applyConfig(msg.cfg)
		return m, m.watchCmd()
	}

	return m, nil
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.zones.Scan(m.render())
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// dispatch turns the sampler's jobs for visible panels into commands.
func (m *Model) dispatch(now time.Time) []tea.Cmd {
	jobs := m.sampler.Dispatch(m.ctx, now, m.widgets.VisibleKinds())
	cmds := make([]tea.Cmd, 0, len(jobs))
	for _, job := range jobs {
		job := job
		cmds = append(cmds, func() tea.Msg {
			return sampleMsg{result: job()}
		})
	}
	return cmds
}

func (m *Model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configChangedMsg{cfg: cfg}
	}
}

// variant is the layout in effect: derived from the aspect ratio when auto
// layout is on, otherwise the chosen one.
func (m *Model) variant() layout.Variant {
	if m.cfg.AutoLayout {
		return layout.Auto(m.bodySize())
	}
	return m.cfg.Layout
}

func (m *Model) bodySize() layout.Size {
	return layout.Size{
		Width:  m.width,
		Height: max(m.height-headerHeight-footerHeight, 0),
	}
}

// recompute derives the panel placement. It runs only after a settled
// resize or a change to the layout or visibility.
func (m *Model) recompute() {
	if !m.sized {
		return
	}
	m.result = layout.Compute(m.widgets.Visible(), m.variant(), m.bodySize())
	m.recomputes++
}

// save hands the current preferences to the saver.
func (m *Model) save() {
	if m.watcher != nil {
		m.watcher.SetLast(m.cfg)
	}
	if m.saver != nil {
		m.saver.Schedule(m.cfg)
	}
}

func (m *Model) setLayout(v layout.Variant) {
	m.cfg.Layout = v
	m.cfg.AutoLayout = false
	m.recompute()
	m.save()
}

func (m *Model) toggleAuto() {
	m.cfg.AutoLayout = !m.cfg.AutoLayout
	m.recompute()
	m.save()
}

func (m *Model) toggleWidget(kind source.Kind) {
	m.cfg.Widgets[kind] = !m.cfg.Visible(kind)
	m.widgets.Sync(m.cfg.Specs())
	m.recompute()
	m.save()
}

func (m *Model) cycleMode(kind source.Kind) {
	m.cfg.Modes[kind] = m.cfg.Mode(kind).Next()
	m.widgets.Sync(m.cfg.Specs())
	m.save()
}

// applyConfig replaces the preferences with ones loaded from disk.
func (m *Model) applyConfig(cfg config.AppConfig) {
	cfg = cfg.Clone()
	cfg.Normalize()
	// A queued write holds older preferences and would undo the edit.
	if m.saver != nil {
		m.saver.Cancel()
	}
	m.cfg = cfg
	m.widgets.Sync(cfg.Specs())
	m.recompute()
	m.log.Info("applied config change from disk")
}

// quit stops sampling and persists pending preferences before the program
// exits. Jobs still running are abandoned.
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	if m.saver != nil {
		if err := m.saver.Flush(); err != nil {
			m.log.Error("saving config on exit: %v", err)
		}
	}
	m.zones.Close()
	return tea.Quit
}

// Config returns a copy of the current preferences.
func (m *Model) Config() config.AppConfig { return m.cfg.Clone() }

// Layout returns the current placement.
func (m *Model) Layout() layout.Result { return m.result }

// Recomputes counts layout computations since start.
func (m *Model) Recomputes() int { return m.recomputes }

// Panel returns the config panel state.
func (m *Model) Panel() PanelState { return m.panel }

// Widgets exposes the panels.
func (m *Model) Widgets() *widget.Widgets { return m.widgets }

// Sampler exposes the sampler for diagnostics.
func (m *Model) Sampler() *sampler.Sampler { return m.sampler }
