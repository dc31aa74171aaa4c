package tui

import (
	"sync"

	"github.com/studiowebux/relaydash/internal/types"
)

// Panel identifies a focusable dashboard panel
type Panel string

const (
	PanelEmails Panel = "emails"
	PanelKeys   Panel = "keys"
)

// regionState is the last result of one region's fetch
type regionState struct {
	loaded bool
	failed bool
}

// PanelState encapsulates the fetched dashboard data and panel navigation.
// Each region is replaced wholesale by its latest fetch result.
type PanelState struct {
	mu sync.RWMutex

	emails  []types.EmailRecord
	keys    []types.APIKeyRecord
	metrics *types.MetricsSnapshot

	emailsState  regionState
	keysState    regionState
	metricsState regionState

	focus       Panel
	emailIndex  int
	keyIndex    int
	emailOffset int
}

// NewPanelState creates an empty panel state focused on the key list
func NewPanelState() *PanelState {
	return &PanelState{
		emails: []types.EmailRecord{},
		keys:   []types.APIKeyRecord{},
		focus:  PanelKeys,
	}
}

// SetEmails replaces the email log
func (s *PanelState) SetEmails(emails []types.EmailRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = emails
	s.emailsState = regionState{loaded: true}
	s.emailIndex = clampIndex(s.emailIndex, len(emails))
	s.emailOffset = clampIndex(s.emailOffset, len(emails))
}

// SetEmailsFailed marks the email log as failed to load
func (s *PanelState) SetEmailsFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailsState = regionState{loaded: true, failed: true}
}

// GetEmails returns a copy of the email log
func (s *PanelState) GetEmails() []types.EmailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.EmailRecord, len(s.emails))
	copy(result, s.emails)
	return result
}

// EmailsStatus reports whether emails were loaded and whether the last load failed
func (s *PanelState) EmailsStatus() (loaded, failed bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailsState.loaded, s.emailsState.failed
}

// SetKeys replaces the key list, keeping the selection in range
func (s *PanelState) SetKeys(keys []types.APIKeyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
	s.keysState = regionState{loaded: true}
	s.keyIndex = clampIndex(s.keyIndex, len(keys))
}

// SetKeysFailed marks the key list as failed to load
func (s *PanelState) SetKeysFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keysState = regionState{loaded: true, failed: true}
}

// GetKeys returns a copy of the key list
func (s *PanelState) GetKeys() []types.APIKeyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.APIKeyRecord, len(s.keys))
	copy(result, s.keys)
	return result
}

// KeysStatus reports whether keys were loaded and whether the last load failed
func (s *PanelState) KeysStatus() (loaded, failed bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysState.loaded, s.keysState.failed
}

// SetMetrics replaces the metrics snapshot
func (s *PanelState) SetMetrics(metrics *types.MetricsSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
	s.metricsState = regionState{loaded: true}
}

// SetMetricsFailed records a failed metrics load; previous values stay visible
func (s *PanelState) SetMetricsFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricsState = regionState{loaded: true, failed: true}
}

// GetMetrics returns the last metrics snapshot, nil before the first successful load
func (s *PanelState) GetMetrics() *types.MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metrics == nil {
		return nil
	}
	snapshot := *s.metrics
	return &snapshot
}

// Focus returns the focused panel
func (s *PanelState) Focus() Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// ToggleFocus switches focus between the email log and the key list
func (s *PanelState) ToggleFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus == PanelKeys {
		s.focus = PanelEmails
	} else {
		s.focus = PanelKeys
	}
}

// Move moves the selection of the focused panel by delta
func (s *PanelState) Move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.focus {
	case PanelKeys:
		s.keyIndex = clampIndex(s.keyIndex+delta, len(s.keys))
	case PanelEmails:
		s.emailIndex = clampIndex(s.emailIndex+delta, len(s.emails))
	}
}

// KeyIndex returns the selected key index
func (s *PanelState) KeyIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyIndex
}

// EmailIndex returns the selected email index
func (s *PanelState) EmailIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailIndex
}

// SelectedKey returns the selected key, if any
func (s *PanelState) SelectedKey() (types.APIKeyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.keys) == 0 {
		return types.APIKeyRecord{}, false
	}
	return s.keys[s.keyIndex], true
}

// EmailWindow returns the first visible email row for a viewport of height rows,
// scrolling only when the selection leaves the window
func (s *PanelState) EmailWindow(height int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if height < 1 {
		height = 1
	}
	if s.emailIndex < s.emailOffset {
		s.emailOffset = s.emailIndex
	}
	if s.emailIndex >= s.emailOffset+height {
		s.emailOffset = s.emailIndex - height + 1
	}
	return s.emailOffset
}

func clampIndex(index, length int) int {
	if length == 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
