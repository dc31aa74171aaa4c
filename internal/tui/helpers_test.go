package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/relaydash/internal/types"
)

// fakeBackend is an in-memory Backend
type fakeBackend struct {
	mu sync.Mutex

	emails  []types.EmailRecord
	metrics *types.MetricsSnapshot
	keys    []types.APIKeyRecord

	emailsErr  error
	metricsErr error
	keysErr    error
	createErr  error
	revokeErr  error
	endErr     error

	created []string
	revoked []types.KeyID
	ended   bool
}

func (f *fakeBackend) FetchEmails(context.Context) ([]types.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emails, f.emailsErr
}

func (f *fakeBackend) FetchMetrics(context.Context) (*types.MetricsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metrics, f.metricsErr
}

func (f *fakeBackend) FetchKeys(context.Context) ([]types.APIKeyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys, f.keysErr
}

func (f *fakeBackend) CreateKey(_ context.Context, name string) (*types.CreatedKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, name)
	return &types.CreatedKey{ID: "99", Name: name, Key: "rm_live_secret"}, nil
}

func (f *fakeBackend) RevokeKey(_ context.Context, id types.KeyID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, id)
	return f.revokeErr
}

func (f *fakeBackend) LogoutURL() string {
	return "http://relay.test/logout"
}

func (f *fakeBackend) EndSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = true
	return f.endErr
}

// fakeClipboard records the last write
type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func testKeys() []types.APIKeyRecord {
	created := types.NewInstant(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return []types.APIKeyRecord{
		{ID: "1", Name: "prod", KeyToken: "rm_live_****abcd", CreatedAt: &created},
		{ID: "2", Name: "ci", KeyToken: "rm_live_****efgh"},
	}
}

func testEmails() []types.EmailRecord {
	name := "prod"
	return []types.EmailRecord{
		{
			Status:    "sent",
			Recipient: "ada@example.com",
			Subject:   "Welcome",
			KeyName:   &name,
			Timestamp: types.NewInstant(time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)),
		},
		{
			Status:    "failed",
			Recipient: "bob@example.com",
			Subject:   "Reset password",
			Timestamp: types.NewInstant(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)),
		},
	}
}

// CreateTestModel creates a Model backed by a fakeBackend with sample data
func CreateTestModel(t *testing.T) (*Model, *fakeBackend, *fakeClipboard) {
	t.Helper()

	backend := &fakeBackend{
		emails:  testEmails(),
		metrics: &types.MetricsSnapshot{Total: 40, Sent: 39, Failed: 1, Rate: 97.5},
		keys:    testKeys(),
	}
	clip := &fakeClipboard{}

	m, err := New(context.Background(), Options{
		Backend:   backend,
		BaseURL:   "http://relay.test",
		Location:  time.UTC,
		Clipboard: clip,
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	t.Cleanup(m.Cleanup)

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	return m, backend, clip
}

// loadAll runs the initial loads synchronously
func loadAll(t *testing.T, m *Model) {
	t.Helper()
	batch, ok := m.Init()().(tea.BatchMsg)
	if !ok {
		t.Fatal("Init should return a batch of loads")
	}
	for _, cmd := range batch {
		m.Update(cmd())
	}
}

// runCmd executes a command that is known not to be a timer and feeds its message back
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func keyPress(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}

// AssertModelField is a helper to assert model field values
func AssertModelField(t *testing.T, fieldName string, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

var errBoom = errors.New("boom")
