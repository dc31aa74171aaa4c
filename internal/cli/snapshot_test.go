package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

type stubFetcher struct {
	emails     []types.EmailRecord
	metrics    *types.MetricsSnapshot
	keys       []types.APIKeyRecord
	metricsErr error
	keysErr    error
}

func (s stubFetcher) FetchEmails(context.Context) ([]types.EmailRecord, error) {
	return s.emails, nil
}

func (s stubFetcher) FetchMetrics(context.Context) (*types.MetricsSnapshot, error) {
	return s.metrics, s.metricsErr
}

func (s stubFetcher) FetchKeys(context.Context) ([]types.APIKeyRecord, error) {
	return s.keys, s.keysErr
}

func TestTakeSnapshotRegionsAreIndependent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	snap := TakeSnapshot(context.Background(), stubFetcher{
		emails:     []types.EmailRecord{{Status: "sent", Recipient: "a@b.com"}},
		metricsErr: errors.New("down"),
		keysErr:    errors.New("down"),
	}, zap.New(core))

	require.NoError(t, snap.EmailsErr)
	assert.Len(t, snap.Emails, 1)
	assert.Error(t, snap.MetricsErr)
	assert.Error(t, snap.KeysErr)

	assert.Equal(t, 1, logs.FilterMessage("Error loading metrics").Len())
	assert.Equal(t, 1, logs.FilterMessage("Error loading keys").Len())
}

func TestSnapshotFragments(t *testing.T) {
	snap := &Snapshot{
		Metrics: &types.MetricsSnapshot{Total: 4, Sent: 3, Failed: 1, Rate: 75},
		KeysErr: errors.New("down"),
	}

	fragments, err := snap.Fragments(view.Formatter{})
	require.NoError(t, err)

	targets := make(map[string]string)
	for _, fragment := range fragments {
		targets[fragment.Target] = string(fragment.HTML)
	}
	assert.Equal(t, "75%", targets[view.TargetMetricRate])
	assert.Contains(t, targets[view.TargetEmails], view.EmailsEmptyTitle)
	assert.Contains(t, targets[view.TargetKeys], view.KeysErrorText)
}

func TestSnapshotFragmentsSkipFailedMetrics(t *testing.T) {
	snap := &Snapshot{MetricsErr: errors.New("down")}

	fragments, err := snap.Fragments(view.Formatter{})
	require.NoError(t, err)

	for _, fragment := range fragments {
		assert.NotEqual(t, view.TargetMetricTotal, fragment.Target)
	}
	assert.Len(t, fragments, 2)
}

func TestPrinterEmptyRegions(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, view.Formatter{})

	require.NoError(t, p.Emails(nil, FormatTable))
	require.NoError(t, p.Keys(nil, FormatTable))

	assert.Contains(t, out.String(), view.EmailsEmptyTitle)
	assert.Contains(t, out.String(), view.KeysEmptyTitle)
}

func TestPrinterKeysTable(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, view.Formatter{Location: time.UTC})
	created := types.NewInstant(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	require.NoError(t, p.Keys([]types.APIKeyRecord{
		{ID: "7", Name: "prod", KeyToken: "rk_live_abcd...", CreatedAt: &created},
	}, FormatTable))

	assert.Contains(t, out.String(), "rk_live_abcd...")
	assert.Contains(t, out.String(), "1/2/2024")
	assert.Contains(t, out.String(), view.NeverUsed)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(" JSON ", regionFormats)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = ParseFormat("text", regionFormats)
	assert.Error(t, err)

	format, err = ParseFormat("html", snapshotFormats)
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, format)
}

func TestKeySelector(t *testing.T) {
	m := newKeySelector([]types.APIKeyRecord{
		{ID: "1", Name: "prod", KeyToken: "rk_live_abcd..."},
		{ID: "2", Name: "staging", KeyToken: "rk_live_wxyz..."},
	})

	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, "prod", m.list.Items()[0].FilterValue())
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(bytes.NewBufferString("yes\n"), &out, "Revoke?"))
	assert.False(t, confirm(bytes.NewBufferString("\n"), &out, "Revoke?"))
	assert.False(t, confirm(bytes.NewBufferString(""), &out, "Revoke?"))
	assert.Contains(t, out.String(), "Revoke? [y/N]: ")
}
