package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/relay"
	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

// DefaultKeyName is used when the create modal is submitted with a blank name
const DefaultKeyName = "My API Key"

// CopiedLabelDuration is how long the copy button reads "Copied!"
const CopiedLabelDuration = 2 * time.Second

// Alert texts shown when a mutation fails
const (
	AlertCreateRejected = relay.CreateFailedMessage
	AlertCreateFailed   = "Error creating key"
	AlertRevokeFailed   = "Error revoking key"
)

// KeyService performs the key mutations against the backend
type KeyService interface {
	CreateKey(ctx context.Context, name string) (*types.CreatedKey, error)
	RevokeKey(ctx context.Context, id types.KeyID) error
	LogoutURL() string
}

// Notifier presents a blocking notice to the user
type Notifier interface {
	Alert(message string)
}

// Clipboard writes text to the system clipboard
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

// WriteAll copies text to the OS clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Navigator leaves the dashboard for the given URL
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Scheduler runs a function after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SessionEnder ends the backend session
type SessionEnder interface {
	EndSession(ctx context.Context) error
}

// SessionNavigator stands in for page navigation outside a browser: it ends
// the session at the backend instead of following the logout URL
type SessionNavigator struct {
	Ender SessionEnder
}

// Navigate ends the session; url is only logged by the coordinator
func (n SessionNavigator) Navigate(ctx context.Context, url string) error {
	return n.Ender.EndSession(ctx)
}

// Recorder keeps a local trail of the actions taken from the dashboard
type Recorder interface {
	Record(ctx context.Context, entry types.ActivityEntry) error
}

// RefreshFunc requests a reload of one dashboard region; it must not block
type RefreshFunc func(region view.Region)

// SchedulerFunc adapts a function to Scheduler
type SchedulerFunc func(d time.Duration, f func())

// AfterFunc calls fn(d, f)
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) {
	fn(d, f)
}

// TimerScheduler schedules with time.AfterFunc
var TimerScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) {
	time.AfterFunc(d, f)
})

// Deps bundles the collaborators of a Coordinator
type Deps struct {
	Keys      KeyService
	Modals    *Modals
	Notifier  Notifier
	Clipboard Clipboard
	Navigator Navigator
	Scheduler Scheduler
	Refresh   RefreshFunc
	Recorder  Recorder
	Logger    *zap.Logger
}

// Coordinator runs the user-triggered key mutations and logout
type Coordinator struct {
	keys      KeyService
	modals    *Modals
	notifier  Notifier
	clipboard Clipboard
	navigator Navigator
	scheduler Scheduler
	refresh   RefreshFunc
	recorder  Recorder
	logger    *zap.Logger
}

// NewCoordinator creates a coordinator; Keys and Modals are required
func NewCoordinator(deps Deps) (*Coordinator, error) {
	if deps.Keys == nil {
		return nil, errors.New("coordinator requires a key service")
	}
	if deps.Modals == nil {
		return nil, errors.New("coordinator requires modal state")
	}

	c := &Coordinator{
		keys:      deps.Keys,
		modals:    deps.Modals,
		notifier:  deps.Notifier,
		clipboard: deps.Clipboard,
		navigator: deps.Navigator,
		scheduler: deps.Scheduler,
		refresh:   deps.Refresh,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
	}
	if c.scheduler == nil {
		c.scheduler = TimerScheduler
	}
	if c.refresh == nil {
		c.refresh = func(view.Region) {}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Modals returns the modal state driven by this coordinator
func (c *Coordinator) Modals() *Modals {
	return c.modals
}

// KeyName trims a submitted name and falls back to DefaultKeyName
func KeyName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultKeyName
	}
	return name
}

// SubmitCreateKey creates a key from the create modal's input.
// On success the success modal replaces the create modal and the key list
// is refreshed; on failure the user is alerted and the create modal stays open.
func (c *Coordinator) SubmitCreateKey(ctx context.Context, rawName string) (*types.CreatedKey, error) {
	name := KeyName(rawName)

	created, err := c.keys.CreateKey(ctx, name)
	if err != nil {
		c.logger.Error("Key creation failed", zap.String("name", name), zap.Error(err))
		c.record(ctx, types.ActivityEntry{Action: types.ActivityCreateKey, KeyName: name}, err)

		var rejected *relay.RequestRejected
		if errors.As(err, &rejected) {
			c.alert(AlertCreateRejected)
		} else {
			c.alert(AlertCreateFailed)
		}
		return nil, err
	}

	if err := c.modals.ShowSuccess(created.Key); err != nil {
		c.logger.Warn("Success modal not shown", zap.String("id", created.ID.String()), zap.Error(err))
	}
	c.logger.Info("Key created", zap.String("name", name), zap.String("id", created.ID.String()))
	c.record(ctx, types.ActivityEntry{Action: types.ActivityCreateKey, KeyID: created.ID, KeyName: name}, nil)
	c.refresh(view.RegionKeys)
	return created, nil
}

// ConfirmRevoke revokes the pending key. Without a pending key it does nothing.
// The revoke modal is closed and the key list refreshed even when the call fails.
func (c *Coordinator) ConfirmRevoke(ctx context.Context) error {
	id, ok := c.modals.TakePending()
	if !ok {
		return nil
	}

	err := c.keys.RevokeKey(ctx, id)
	c.modals.Close(ModalRevoke)
	if err != nil {
		c.logger.Error("Key revocation failed", zap.String("id", id.String()), zap.Error(err))
		c.alert(AlertRevokeFailed)
	} else {
		c.logger.Info("Key revoked", zap.String("id", id.String()))
	}
	c.record(ctx, types.ActivityEntry{Action: types.ActivityRevokeKey, KeyID: id}, err)
	c.refresh(view.RegionKeys)
	return err
}

// CopyGeneratedKey copies the key shown in the success modal and flips the
// copy label to "Copied!" for CopiedLabelDuration.
func (c *Coordinator) CopyGeneratedKey() error {
	key := c.modals.GeneratedKey()
	if key == "" {
		return errors.New("no generated key to copy")
	}
	if c.clipboard == nil {
		return errors.New("clipboard is not available")
	}

	if err := c.clipboard.WriteAll(key); err != nil {
		c.logger.Warn("Clipboard write failed", zap.Error(err))
		return fmt.Errorf("failed to copy key: %w", err)
	}

	c.modals.setCopyLabel(LabelCopied)
	c.scheduler.AfterFunc(CopiedLabelDuration, func() {
		c.modals.setCopyLabel(LabelCopy)
	})
	return nil
}

// Logout closes the logout confirmation and navigates to the logout endpoint
func (c *Coordinator) Logout(ctx context.Context) error {
	c.modals.Close(ModalLogout)

	if c.navigator == nil {
		return errors.New("navigator is not available")
	}

	url := c.keys.LogoutURL()
	c.logger.Info("Logging out", zap.String("url", url))
	err := c.navigator.Navigate(ctx, url)
	c.record(ctx, types.ActivityEntry{Action: types.ActivityLogout}, err)
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// record stores the outcome of an action; history failures never fail the action
func (c *Coordinator) record(ctx context.Context, entry types.ActivityEntry, actionErr error) {
	if c.recorder == nil {
		return
	}
	if actionErr != nil {
		entry.Error = actionErr.Error()
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		c.logger.Warn("Failed to record activity", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (c *Coordinator) alert(message string) {
	if c.notifier != nil {
		c.notifier.Alert(message)
	}
}
