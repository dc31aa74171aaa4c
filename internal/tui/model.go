package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/dashboard"
	"github.com/studiowebux/relaydash/internal/keybinds"
	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeCreateKey
	ModeSuccess
	ModeRevokeConfirm
	ModeLogoutConfirm
	ModeHelp
)

// Backend is the data source and key service the dashboard talks to
type Backend interface {
	dashboard.KeyService
	dashboard.SessionEnder
	FetchEmails(ctx context.Context) ([]types.EmailRecord, error)
	FetchMetrics(ctx context.Context) (*types.MetricsSnapshot, error)
	FetchKeys(ctx context.Context) ([]types.APIKeyRecord, error)
}

// Model represents the TUI state
type Model struct {
	// Core state
	backend     Backend
	coordinator *dashboard.Coordinator
	modals      *dashboard.Modals
	panels      *PanelState
	effects     *effectSink
	keybinds    *keybinds.Registry
	formatter   view.Formatter
	logger      *zap.Logger
	baseURL     string
	snippet     string

	// Lifetime of all requests; cancelled on quit
	ctx    context.Context
	cancel context.CancelFunc

	// Create modal input
	nameInput textinput.Model

	// UI state
	width          int
	height         int
	showHelp       bool
	busy           bool
	statusMsg      string
	errorMsg       string
	fullErrorMsg   string
	messageTimeout time.Duration
}

// Custom message types
type emailsLoadedMsg struct {
	emails []types.EmailRecord
	err    error
}

type metricsLoadedMsg struct {
	metrics *types.MetricsSnapshot
	err     error
}

type keysLoadedMsg struct {
	keys []types.APIKeyRecord
	err  error
}

type actionKind string

const (
	actionCreate actionKind = "create"
	actionRevoke actionKind = "revoke"
	actionCopy   actionKind = "copy"
	actionLogout actionKind = "logout"
)

type actionDoneMsg struct {
	action  actionKind
	err     error
	effects effectBatch
}

type scheduledMsg struct {
	fn func()
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

// Init starts the three region loads; they are independent and finish in any order
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadRegion(view.RegionMetrics),
		m.loadRegion(view.RegionEmails),
		m.loadRegion(view.RegionKeys),
	)
}

// Cleanup cancels in-flight requests
func (m *Model) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Mode returns the current mode, derived from the modal state
func (m *Model) Mode() Mode {
	if m.showHelp {
		return ModeHelp
	}
	switch m.modals.Active() {
	case dashboard.ModalCreate:
		return ModeCreateKey
	case dashboard.ModalSuccess:
		return ModeSuccess
	case dashboard.ModalRevoke:
		return ModeRevokeConfirm
	case dashboard.ModalLogout:
		return ModeLogoutConfirm
	default:
		return ModeNormal
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.nameInput.Width = ModalWidth - ModalPadding*2

	case emailsLoadedMsg:
		if msg.err != nil {
			m.logger.Error("Error loading emails", zap.Error(msg.err))
			m.panels.SetEmailsFailed()
		} else {
			m.panels.SetEmails(msg.emails)
		}

	case metricsLoadedMsg:
		// metrics are best-effort: a failure is only logged
		if msg.err != nil {
			m.logger.Error("Error loading metrics", zap.Error(msg.err))
			m.panels.SetMetricsFailed()
		} else {
			m.panels.SetMetrics(msg.metrics)
		}

	case keysLoadedMsg:
		if msg.err != nil {
			m.logger.Error("Error loading keys", zap.Error(msg.err))
			m.panels.SetKeysFailed()
		} else {
			m.panels.SetKeys(msg.keys)
		}

	case actionDoneMsg:
		cmd = m.handleActionDone(msg)

	case scheduledMsg:
		msg.fn()

	case clearStatusMsg:
		m.statusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}

	return m, cmd
}

// handleActionDone applies the outcome of a coordinator action
func (m *Model) handleActionDone(msg actionDoneMsg) tea.Cmd {
	m.busy = false
	var cmds []tea.Cmd

	for _, alert := range msg.effects.alerts {
		cmds = append(cmds, m.setErrorMessage(alert))
	}
	for _, region := range msg.effects.refresh {
		cmds = append(cmds, m.loadRegion(region))
	}
	for _, timer := range msg.effects.timers {
		fn := timer.fn
		cmds = append(cmds, tea.Tick(timer.delay, func(time.Time) tea.Msg {
			return scheduledMsg{fn: fn}
		}))
	}

	switch msg.action {
	case actionCreate:
		if msg.err == nil {
			m.nameInput.Blur()
			m.nameInput.SetValue("")
			cmds = append(cmds, m.setStatusMessage("API key created, copy it now: it will not be shown again"))
		}
	case actionRevoke:
		if msg.err == nil {
			cmds = append(cmds, m.setStatusMessage("API key revoked"))
		}
	case actionCopy:
		if msg.err != nil {
			cmds = append(cmds, m.setErrorMessage(fmt.Sprintf("Failed to copy to clipboard: %v", msg.err)))
		} else {
			cmds = append(cmds, m.setStatusMessage("Key copied to clipboard"))
		}
	case actionLogout:
		if msg.err != nil {
			cmds = append(cmds, m.setErrorMessage(msg.err.Error()))
		} else {
			m.Cleanup()
			cmds = append(cmds, tea.Quit)
		}
	}

	return tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.Mode() {
	case ModeHelp:
		return m.renderHelp()
	case ModeCreateKey:
		return m.renderCreateModal()
	case ModeSuccess:
		return m.renderSuccessModal()
	case ModeRevokeConfirm:
		return m.renderRevokeModal()
	case ModeLogoutConfirm:
		return m.renderLogoutModal()
	default:
		return m.renderMain()
	}
}

// Helper methods for setting messages with optional timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = truncate(msg, MaxStatusLength)
	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})
	}
	return nil
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	m.errorMsg = truncate(msg, MaxStatusLength)
	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{}
		})
	}
	return nil
}

func truncate(msg string, max int) string {
	if len(msg) > max {
		return msg[:max-3] + "..."
	}
	return msg
}
