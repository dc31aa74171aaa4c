package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/relaydash/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.Mode() {
	case ModeHelp:
		return m.handleHelpKeys(msg)
	case ModeCreateKey:
		return m.handleCreateKeys(msg)
	case ModeSuccess:
		return m.handleSuccessKeys(msg)
	case ModeRevokeConfirm, ModeLogoutConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// modeContext maps a mode to the keybinding context it reads
func modeContext(mode Mode) keybinds.Context {
	switch mode {
	case ModeHelp:
		return keybinds.ContextHelp
	case ModeCreateKey:
		return keybinds.ContextCreate
	case ModeSuccess:
		return keybinds.ContextSuccess
	case ModeRevokeConfirm, ModeLogoutConfirm:
		return keybinds.ContextConfirm
	default:
		return keybinds.ContextDashboard
	}
}

func (m *Model) quit() tea.Cmd {
	m.Cleanup()
	return tea.Quit
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextDashboard, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return m.quit()
	case keybinds.ActionHelp:
		m.showHelp = true
	case keybinds.ActionNavigateUp:
		m.panels.Move(-1)
	case keybinds.ActionNavigateDown:
		m.panels.Move(1)
	case keybinds.ActionSwitchFocus:
		m.panels.ToggleFocus()
	case keybinds.ActionRefresh:
		return m.refreshAll()
	case keybinds.ActionNewKey, keybinds.ActionRevokeKey, keybinds.ActionLogout:
		if m.busy {
			return m.waitForAction()
		}
		return m.openModal(action)
	}
	return nil
}

// openModal opens the modal bound to a dashboard action
func (m *Model) openModal(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionNewKey:
		return m.openCreateModal()
	case keybinds.ActionRevokeKey:
		return m.openRevokeConfirm()
	case keybinds.ActionLogout:
		if err := m.modals.OpenLogoutConfirm(); err != nil {
			return m.setErrorMessage(err.Error())
		}
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextHelp, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		return m.quit()
	case keybinds.ActionCloseModal, keybinds.ActionHelp:
		m.showHelp = false
	}
	return nil
}

func (m *Model) handleCreateKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextCreate, msg.String())
	if ok {
		switch action {
		case keybinds.ActionQuitForce:
			return m.quit()
		case keybinds.ActionCloseModal:
			if m.busy {
				return m.waitForAction()
			}
			m.closeModal()
			return nil
		case keybinds.ActionSubmit:
			if m.busy {
				return nil
			}
			return m.submitCreateKey()
		}
	}
	if m.busy {
		return nil
	}

	// Everything else is typing
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	m.modals.SetNameInput(m.nameInput.Value())
	return cmd
}

func (m *Model) handleSuccessKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextSuccess, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		return m.quit()
	case keybinds.ActionCopyKey:
		return m.copyGeneratedKey()
	case keybinds.ActionCloseModal:
		m.closeModal()
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		return m.quit()
	case keybinds.ActionCloseModal:
		if m.busy {
			return m.waitForAction()
		}
		m.closeModal()
	case keybinds.ActionConfirm:
		if m.busy {
			return nil
		}
		if m.Mode() == ModeLogoutConfirm {
			return m.logout()
		}
		return m.confirmRevoke()
	}
	return nil
}
