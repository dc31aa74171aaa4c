package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/studiowebux/relaydash/internal/types"
)

// ModalID is the stable identifier of a modal container
type ModalID string

const (
	ModalNone    ModalID = ""
	ModalCreate  ModalID = "create-modal"
	ModalSuccess ModalID = "success-modal"
	ModalRevoke  ModalID = "revoke-modal"
	ModalLogout  ModalID = "logout-modal"
)

// Copy button labels
const (
	LabelCopy   = "Copy"
	LabelCopied = "Copied!"
)

// ErrModalActive is returned when opening a modal while another one is shown
var ErrModalActive = errors.New("another modal is already active")

// ErrNotCreating is returned by ShowSuccess when the create modal is no longer shown
var ErrNotCreating = errors.New("create modal is not active")

// ModalState is a snapshot of the active modal and what it carries
type ModalState struct {
	Active       ModalID
	GeneratedKey string
	RevokeTarget types.KeyID
}

// Modals holds the modal state machine: at most one modal is active at a time
type Modals struct {
	mu sync.RWMutex

	active       ModalID
	generatedKey string
	pending      *types.KeyID

	nameInput    string
	inputFocused bool
	copyLabel    string
}

// NewModals creates a modal controller with no modal open
func NewModals() *Modals {
	return &Modals{
		active:    ModalNone,
		copyLabel: LabelCopy,
	}
}

// State returns a snapshot of the current modal state
func (m *Modals) State() ModalState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := ModalState{Active: m.active}
	switch m.active {
	case ModalSuccess:
		state.GeneratedKey = m.generatedKey
	case ModalRevoke:
		if m.pending != nil {
			state.RevokeTarget = *m.pending
		}
	}
	return state
}

// Active returns the active modal id, ModalNone when nothing is shown
func (m *Modals) Active() ModalID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// IsActive reports whether the given modal is shown
func (m *Modals) IsActive(id ModalID) bool {
	return m.Active() == id
}

func (m *Modals) openLocked(id ModalID) error {
	if m.active != ModalNone {
		return fmt.Errorf("open %s: %w (%s)", id, ErrModalActive, m.active)
	}
	m.active = id
	return nil
}

// OpenCreate shows the create modal with an empty, focused name input
func (m *Modals) OpenCreate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.openLocked(ModalCreate); err != nil {
		return err
	}
	m.nameInput = ""
	m.inputFocused = true
	return nil
}

// OpenRevokeConfirm shows the revoke confirmation for a key and remembers it as pending
func (m *Modals) OpenRevokeConfirm(id types.KeyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.openLocked(ModalRevoke); err != nil {
		return err
	}
	m.pending = &id
	return nil
}

// OpenLogoutConfirm shows the logout confirmation
func (m *Modals) OpenLogoutConfirm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(ModalLogout)
}

// ShowSuccess replaces the create modal with the success modal in one step.
// Any other active modal is left untouched and ErrNotCreating is returned.
func (m *Modals) ShowSuccess(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != ModalCreate {
		return ErrNotCreating
	}
	m.inputFocused = false
	m.active = ModalSuccess
	m.generatedKey = key
	m.copyLabel = LabelCopy
	return nil
}

// Close hides the named modal; closing a modal that is not shown does nothing
func (m *Modals) Close(id ModalID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == ModalNone || m.active != id {
		return
	}

	switch id {
	case ModalCreate:
		m.inputFocused = false
	case ModalRevoke:
		m.pending = nil
	case ModalSuccess:
		m.generatedKey = ""
		m.copyLabel = LabelCopy
	}
	m.active = ModalNone
}

// CloseActive hides whichever modal is shown
func (m *Modals) CloseActive() {
	m.Close(m.Active())
}

// Pending returns the key awaiting revocation, if any
func (m *Modals) Pending() (types.KeyID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return "", false
	}
	return *m.pending, true
}

// TakePending returns the pending key and clears it
func (m *Modals) TakePending() (types.KeyID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return "", false
	}
	id := *m.pending
	m.pending = nil
	return id, true
}

// GeneratedKey returns the key shown by the success modal
func (m *Modals) GeneratedKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generatedKey
}

// NameInput returns the create modal's name input value
func (m *Modals) NameInput() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameInput
}

// SetNameInput sets the create modal's name input value
func (m *Modals) SetNameInput(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nameInput = value
}

// InputFocused reports whether the name input has focus
func (m *Modals) InputFocused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputFocused
}

// CopyLabel returns the current label of the copy button
func (m *Modals) CopyLabel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyLabel
}

func (m *Modals) setCopyLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyLabel = label
}
