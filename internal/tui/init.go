package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/dashboard"
	"github.com/studiowebux/relaydash/internal/keybinds"
	"github.com/studiowebux/relaydash/internal/view"
)

// Options configures a dashboard model
type Options struct {
	Backend        Backend
	BaseURL        string
	Keybinds       *keybinds.Registry
	Location       *time.Location
	MessageTimeout time.Duration
	Logger         *zap.Logger

	// Clipboard defaults to the system clipboard
	Clipboard dashboard.Clipboard
	// Recorder keeps the local activity history; nil disables it
	Recorder dashboard.Recorder
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) (*Model, error) {
	if opts.Backend == nil {
		return nil, errors.New("dashboard requires a backend")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = dashboard.SystemClipboard{}
	}

	snippet, err := view.Snippet(view.SnippetTerminal)
	if err != nil {
		logger.Warn("Snippet highlighting failed", zap.Error(err))
		snippet = view.SDKSnippet
	}

	modals := dashboard.NewModals()
	effects := newEffectSink()
	coordinator, err := dashboard.NewCoordinator(dashboard.Deps{
		Keys:      opts.Backend,
		Modals:    modals,
		Notifier:  effects,
		Clipboard: clip,
		Navigator: dashboard.SessionNavigator{Ender: opts.Backend},
		Scheduler: effects,
		Refresh:   effects.Refresh,
		Recorder:  opts.Recorder,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	input := textinput.New()
	input.Placeholder = dashboard.DefaultKeyName
	input.CharLimit = KeyNameCharLimit
	input.Width = ModalWidth - ModalPadding*2

	runCtx, cancel := context.WithCancel(ctx)

	return &Model{
		backend:        opts.Backend,
		coordinator:    coordinator,
		modals:         modals,
		panels:         NewPanelState(),
		effects:        effects,
		keybinds:       registry,
		formatter:      view.Formatter{Location: opts.Location},
		logger:         logger,
		baseURL:        opts.BaseURL,
		snippet:        snippet,
		ctx:            runCtx,
		cancel:         cancel,
		nameInput:      input,
		messageTimeout: opts.MessageTimeout,
	}, nil
}

// Run starts the TUI and blocks until the user quits or logs out
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
