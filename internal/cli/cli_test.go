package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/relaydash/internal/keybinds"
	"github.com/studiowebux/relaydash/internal/mock"
	"github.com/studiowebux/relaydash/internal/relay"
	"github.com/studiowebux/relaydash/internal/types"
	"github.com/studiowebux/relaydash/internal/view"
)

const testSession = "s3cret"

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testFixture() *mock.Fixture {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &mock.Fixture{
		Keys: []mock.FixtureKey{
			{ID: 1, Name: "prod", Key: "abcdEFGHsecret", CreatedAt: &created},
			{ID: 2, Name: "staging", Key: "wxyzsecret", CreatedAt: &created},
		},
		Emails: []mock.FixtureEmail{
			{ID: 1, KeyID: 1, Recipient: "a@b.com", Subject: "first", Status: "sent", Timestamp: fixedNow.Add(-2 * time.Hour)},
			{ID: 2, KeyID: 1, Recipient: "c@d.com", Subject: "second", Status: "failed", Timestamp: fixedNow.Add(-1 * time.Hour)},
			{ID: 3, KeyID: 2, Recipient: "e@f.com", Subject: "third", Status: "sent", Timestamp: fixedNow.Add(-3 * time.Hour)},
		},
	}
}

func newBackend(t *testing.T, fixture *mock.Fixture) (*mock.Server, string) {
	t.Helper()
	srv, err := mock.NewServer(fixture, mock.Options{
		Session: testSession,
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, baseURL, stdin string, args ...string) result {
	t.Helper()
	return runCLIIn(t, t.TempDir(), baseURL, stdin, args...)
}

// runCLIIn runs the command with a config directory shared across calls
func runCLIIn(t *testing.T, configDir, baseURL, stdin string, args ...string) result {
	t.Helper()

	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config-dir", configDir,
		"--base-url", baseURL,
		"--session", testSession,
		"--timezone", "UTC",
	}, args...))

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestEmailsTable(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "emails")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "a@b.com")
	assert.Contains(t, res.stdout, "prod")
	assert.Contains(t, res.stdout, "3/10/2024, 11:00:00 AM")
}

func TestEmailsStatusFilterJSON(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "emails", "--status", "FAILED", "-o", "json")
	require.NoError(t, res.err)

	var emails []types.EmailRecord
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &emails))
	require.Len(t, emails, 1)
	assert.Equal(t, "c@d.com", emails[0].Recipient)
}

func TestEmailsQuery(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "emails", "--query", "[].subject")
	require.NoError(t, res.err)

	var subjects []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &subjects))
	assert.Equal(t, []string{"second", "first", "third"}, subjects)
}

func TestInvalidQueryFailsBeforeFetching(t *testing.T) {
	srv, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "emails", "--query", "[?")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid JMESPath")

	for _, entry := range srv.GetLogs() {
		assert.NotEqual(t, relay.PathEmails, entry.Path)
	}
}

func TestMetricsYAML(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "metrics", "-o", "yaml")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "total: 3")
	assert.Contains(t, res.stdout, "rate: 66.7")
}

func TestMetricsHTML(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "metrics", "-o", "html")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, `<span id="metric-total">3</span>`)
	assert.Contains(t, res.stdout, `<span id="metric-rate">66.7%</span>`)
}

func TestKeysMatch(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keys", "--match", "stg", "-o", "json")
	require.NoError(t, res.err)

	var keys []types.APIKeyRecord
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, "staging", keys[0].Name)
	assert.Equal(t, "rk_live_wxyz...", keys[0].KeyToken)
}

func TestKeysHTML(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keys", "-o", "html")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, `<div id="keys-list">`)
	assert.Contains(t, res.stdout, `openRevokeModal('1')`)
}

func TestKeysCreate(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keys", "create", "  CI runner  ", "-o", "json")
	require.NoError(t, res.err)

	var created types.CreatedKey
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &created))
	assert.Equal(t, "CI runner", created.Name)
	assert.NotEmpty(t, created.Key)

	list := runCLI(t, url, "", "keys", "-o", "json", "--query", "[].name")
	require.NoError(t, list.err)
	assert.Contains(t, list.stdout, "CI runner")
}

func TestKeysCreateDefaultName(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keys", "create")
	require.NoError(t, res.err)

	key := strings.TrimSpace(res.stdout)
	assert.NotEmpty(t, key)
	assert.Contains(t, res.stderr, "will not be shown again")

	list := runCLI(t, url, "", "keys", "-o", "json", "--query", "[].name")
	require.NoError(t, list.err)
	assert.Contains(t, list.stdout, "My API Key")
}

func TestKeysCreateRejected(t *testing.T) {
	srv, url := newBackend(t, testFixture())
	srv.SetRoutes([]mock.Route{{Method: "POST", Path: relay.PathKeys, Status: 500}})

	res := runCLI(t, url, "", "keys", "create", "x")
	require.Error(t, res.err)

	var rejected *relay.RequestRejected
	assert.ErrorAs(t, res.err, &rejected)
	assert.Contains(t, res.stderr, "Error: Failed to create key")

	assert.True(t, IsAlerted(res.err))
	var stderr bytes.Buffer
	stderr.WriteString(res.stderr)
	ReportError(&stderr, res.err)
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error:"))
}

func TestKeysRevokeFailureReportedOnce(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	res := runCLI(t, url, "", "keys", "revoke", "1", "--yes")
	require.Error(t, res.err)

	var stderr bytes.Buffer
	stderr.WriteString(res.stderr)
	ReportError(&stderr, res.err)
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error:"))
	assert.Contains(t, stderr.String(), "Error revoking key")
}

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	ReportError(&out, errors.New("config missing"))
	ReportError(&out, alerted(errors.New("already shown")))
	ReportError(&out, nil)

	assert.Equal(t, "Error: config missing\n", out.String())
}

func TestKeysRevoke(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keys", "revoke", "1", "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Key 1 revoked")

	list := runCLI(t, url, "", "keys", "-o", "json", "--query", "[].name")
	require.NoError(t, list.err)
	assert.NotContains(t, list.stdout, "prod")
	assert.Contains(t, list.stdout, "staging")
}

func TestKeysRevokeConfirmation(t *testing.T) {
	_, url := newBackend(t, testFixture())

	declined := runCLI(t, url, "n\n", "keys", "revoke", "1")
	require.Error(t, declined.err)
	assert.Contains(t, declined.err.Error(), "cancelled")

	accepted := runCLI(t, url, "y\n", "keys", "revoke", "1")
	require.NoError(t, accepted.err)
	assert.Contains(t, accepted.stdout, "Key 1 revoked")
}

func TestLogout(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "logout")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Session ended")
}

func TestHistoryRecordsActions(t *testing.T) {
	_, url := newBackend(t, testFixture())
	dir := t.TempDir()

	require.NoError(t, runCLIIn(t, dir, url, "", "keys", "create", "ci").err)
	require.NoError(t, runCLIIn(t, dir, url, "", "keys", "revoke", "1", "--yes").err)
	require.NoError(t, runCLIIn(t, dir, url, "", "logout").err)

	res := runCLIIn(t, dir, url, "", "history", "-o", "json")
	require.NoError(t, res.err)

	var entries []types.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, types.ActivityLogout, entries[0].Action)
	assert.Equal(t, types.ActivityRevokeKey, entries[1].Action)
	assert.Equal(t, types.KeyID("1"), entries[1].KeyID)
	assert.Equal(t, types.ActivityCreateKey, entries[2].Action)
	assert.Equal(t, "ci", entries[2].KeyName)

	table := runCLIIn(t, dir, url, "", "history", "--action", types.ActivityCreateKey)
	require.NoError(t, table.err)
	assert.Contains(t, table.stdout, "create_key")
	assert.NotContains(t, table.stdout, "logout")

	cleared := runCLIIn(t, dir, url, "", "history", "--clear")
	require.NoError(t, cleared.err)
	empty := runCLIIn(t, dir, url, "", "history")
	require.NoError(t, empty.err)
	assert.Contains(t, empty.stdout, "No activity recorded")
}

func TestHistoryRecordsFailures(t *testing.T) {
	srv, url := newBackend(t, testFixture())
	srv.SetRoutes([]mock.Route{{Method: "POST", Path: relay.PathKeys, Status: 500}})
	dir := t.TempDir()

	require.Error(t, runCLIIn(t, dir, url, "", "keys", "create", "x").err)

	res := runCLIIn(t, dir, url, "", "history", "-o", "json")
	require.NoError(t, res.err)

	var entries []types.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Succeeded())
	assert.Equal(t, "x", entries[0].KeyName)
}

func TestHistoryDisabled(t *testing.T) {
	_, url := newBackend(t, testFixture())
	dir := t.TempDir()

	require.NoError(t, runCLIIn(t, dir, url, "", "--history=false", "logout").err)

	res := runCLIIn(t, dir, url, "", "history", "-o", "json")
	require.NoError(t, res.err)
	assert.Equal(t, "[]", strings.TrimSpace(res.stdout))
}

func TestHistoryRejectsUnknownAction(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "history", "--action", "delete_everything")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown action")
}

func TestSnapshotHTMLWithFailedRegion(t *testing.T) {
	srv, url := newBackend(t, testFixture())
	srv.SetRoutes([]mock.Route{{Method: "GET", Path: relay.PathEmails, Status: 500}})

	res := runCLI(t, url, "", "snapshot", "-o", "html")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, view.EmailsErrorText)
	assert.Contains(t, res.stdout, `<span id="metric-total">3</span>`)
	assert.Contains(t, res.stdout, `<div id="keys-list">`)
	assert.Contains(t, res.stdout, "staging")
}

func TestSnapshotText(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "snapshot")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Recent Emails")
	assert.Contains(t, res.stdout, "API Keys")
	assert.Contains(t, res.stdout, "66.7%")
	assert.Contains(t, res.stdout, "rk_live_abcd...")
}

func TestUnsupportedFormat(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "emails", "-o", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unsupported output format")
}

func TestInvalidBaseURL(t *testing.T) {
	res := runCLI(t, "ftp://relay", "", "emails")
	require.Error(t, res.err)
}

func TestKeybindsCommand(t *testing.T) {
	_, url := newBackend(t, testFixture())

	res := runCLI(t, url, "", "keybinds")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, string(keybinds.ActionNewKey))
	assert.Contains(t, res.stdout, string(keybinds.ContextConfirm))
}

func TestKeybindsExport(t *testing.T) {
	_, url := newBackend(t, testFixture())
	path := filepath.Join(t.TempDir(), "keybinds.json")

	res := runCLI(t, url, "", "keybinds", "--export", path)
	require.NoError(t, res.err)

	_, err := os.Stat(path)
	require.NoError(t, err)
	cfg, err := keybinds.LoadConfig(path)
	require.NoError(t, err)
	assert.NoError(t, keybinds.CheckConfig(cfg))
}
