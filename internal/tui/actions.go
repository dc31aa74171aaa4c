package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/relaydash/internal/view"
)

// loadRegion fetches one region; the result replaces only that region
func (m *Model) loadRegion(region view.Region) tea.Cmd {
	ctx := m.ctx
	backend := m.backend

	switch region {
	case view.RegionEmails:
		return func() tea.Msg {
			emails, err := backend.FetchEmails(ctx)
			return emailsLoadedMsg{emails: emails, err: err}
		}
	case view.RegionMetrics:
		return func() tea.Msg {
			metrics, err := backend.FetchMetrics(ctx)
			return metricsLoadedMsg{metrics: metrics, err: err}
		}
	case view.RegionKeys:
		return func() tea.Msg {
			keys, err := backend.FetchKeys(ctx)
			return keysLoadedMsg{keys: keys, err: err}
		}
	}
	return nil
}

// refreshAll reloads every region
func (m *Model) refreshAll() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(view.Regions))
	for _, region := range view.Regions {
		cmds = append(cmds, m.loadRegion(region))
	}
	return tea.Batch(append(cmds, m.setStatusMessage("Refreshing..."))...)
}

// runAction runs a coordinator call off the event loop and reports back with
// everything the coordinator requested while it ran
func (m *Model) runAction(kind actionKind, fn func(ctx context.Context) error) tea.Cmd {
	if m.busy {
		return m.waitForAction()
	}
	m.busy = true

	ctx := m.ctx
	effects := m.effects
	return func() tea.Msg {
		err := fn(ctx)
		return actionDoneMsg{action: kind, err: err, effects: effects.drain()}
	}
}

// waitForAction tells the user a coordinator call is still in flight
func (m *Model) waitForAction() tea.Cmd {
	return m.setErrorMessage(msgActionInFlight)
}

// submitCreateKey creates a key from the create modal input
func (m *Model) submitCreateKey() tea.Cmd {
	name := m.nameInput.Value()
	m.modals.SetNameInput(name)
	m.statusMsg = "Creating key..."

	coordinator := m.coordinator
	return m.runAction(actionCreate, func(ctx context.Context) error {
		_, err := coordinator.SubmitCreateKey(ctx, name)
		return err
	})
}

// openRevokeConfirm asks for confirmation before revoking the selected key
func (m *Model) openRevokeConfirm() tea.Cmd {
	key, ok := m.panels.SelectedKey()
	if !ok {
		return m.setErrorMessage("No key selected")
	}
	if err := m.modals.OpenRevokeConfirm(key.ID); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

// confirmRevoke revokes the key awaiting confirmation
func (m *Model) confirmRevoke() tea.Cmd {
	coordinator := m.coordinator
	return m.runAction(actionRevoke, coordinator.ConfirmRevoke)
}

// copyGeneratedKey copies the key shown in the success modal
func (m *Model) copyGeneratedKey() tea.Cmd {
	coordinator := m.coordinator
	return m.runAction(actionCopy, func(context.Context) error {
		return coordinator.CopyGeneratedKey()
	})
}

// logout ends the session; the model quits once it is done
func (m *Model) logout() tea.Cmd {
	m.statusMsg = "Logging out..."
	coordinator := m.coordinator
	return m.runAction(actionLogout, coordinator.Logout)
}

// openCreateModal shows the create modal with an empty focused input
func (m *Model) openCreateModal() tea.Cmd {
	if err := m.modals.OpenCreate(); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Cannot open create dialog: %v", err))
	}
	m.errorMsg = ""
	m.fullErrorMsg = ""
	m.nameInput.SetValue(m.modals.NameInput())
	return m.nameInput.Focus()
}

// closeModal closes whichever modal is open
func (m *Model) closeModal() {
	m.modals.CloseActive()
	m.nameInput.Blur()
}
