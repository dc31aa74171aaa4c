package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testFixture() *Fixture {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Fixture{
		Keys: []FixtureKey{
			{ID: 1, Name: "prod", Key: "abcdEFGHsecret", CreatedAt: &created},
			{ID: 2, Name: "old", Key: "zzzzsecret", Revoked: true},
		},
		Emails: []FixtureEmail{
			{ID: 1, KeyID: 1, Recipient: "a@b.com", Subject: "first", Status: "sent", Timestamp: fixedNow.Add(-2 * time.Hour)},
			{ID: 2, KeyID: 1, Recipient: "c@d.com", Subject: "second", Status: "failed", Timestamp: fixedNow.Add(-1 * time.Hour)},
			{ID: 3, KeyID: 2, Recipient: "e@f.com", Subject: "third", Status: "sent", Timestamp: fixedNow.Add(-3 * time.Hour)},
		},
	}
}

func newTestServer(t *testing.T, fixture *Fixture, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	srv, err := NewServer(fixture, opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "rk_live_abcd...", MaskKey("abcdEFGH"))
	assert.Equal(t, "rk_live_ab...", MaskKey("ab"))
	assert.Equal(t, "rk_live_...", MaskKey(""))
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 50.0, SuccessRate(1, 2))
	assert.Equal(t, 66.7, SuccessRate(2, 3))
	assert.Equal(t, 100.0, SuccessRate(4, 4))
}

func TestListEmailsNewestFirst(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{})

	var emails []map[string]interface{}
	status := getJSON(t, ts.URL+"/api/v1/emails", &emails)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, emails, 3)
	assert.Equal(t, "second", emails[0]["subject"])
	assert.Equal(t, "first", emails[1]["subject"])
	assert.Equal(t, "third", emails[2]["subject"])
	assert.Equal(t, "old", emails[2]["key_name"])
}

func TestMetrics(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{})

	var metrics map[string]float64
	getJSON(t, ts.URL+"/api/v1/metrics", &metrics)

	assert.Equal(t, 3.0, metrics["total"])
	assert.Equal(t, 2.0, metrics["sent"])
	assert.Equal(t, 1.0, metrics["failed"])
	assert.Equal(t, 66.7, metrics["rate"])
	assert.Equal(t, 1.0, metrics["active_keys"])
}

func TestListKeysHidesRevoked(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{})

	var keys []map[string]interface{}
	getJSON(t, ts.URL+"/api/v1/keys", &keys)

	require.Len(t, keys, 1)
	assert.Equal(t, "prod", keys[0]["name"])
	assert.Equal(t, "rk_live_abcd...", keys[0]["key_token"])
	assert.Equal(t, "2024-01-02T03:04:05.000000", keys[0]["created_at"])
	assert.Equal(t, "2024-03-10T11:00:00.000000", keys[0]["last_used"])
}

func TestCreateAndRevokeKey(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{})

	resp, err := http.Post(ts.URL+"/api/v1/keys", "application/json", strings.NewReader(`{"name":"ci"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "ci", created["name"])
	assert.Equal(t, 3.0, created["id"])
	assert.Len(t, created["key"], 43)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/keys/3", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	var keys []map[string]interface{}
	getJSON(t, ts.URL+"/api/v1/keys", &keys)
	assert.Len(t, keys, 1)
}

func TestCreateKeyDefaultName(t *testing.T) {
	_, ts := newTestServer(t, nil, Options{})

	resp, err := http.Post(ts.URL+"/api/v1/keys", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Key 2024-03-10 12:00", created["name"])
}

func TestRevokeUnknownKey(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/keys/99", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouteOverrideForcesStatus(t *testing.T) {
	fixture := testFixture()
	fixture.Routes = []Route{{Name: "broken keys", Method: "GET", Path: "/api/v1/keys", Status: 500, Body: "boom"}}
	srv, ts := newTestServer(t, fixture, Options{})

	resp, err := http.Get(ts.URL + "/api/v1/keys")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	logs := srv.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "broken keys", logs[0].MatchedRule)
	assert.Equal(t, http.StatusInternalServerError, logs[0].Status)
}

func TestSessionRequired(t *testing.T) {
	_, ts := newTestServer(t, testFixture(), Options{Session: "s3cret"})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.Get(ts.URL + "/api/v1/keys")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/keys", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "session", Value: "s3cret"})
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutRedirects(t *testing.T) {
	_, ts := newTestServer(t, nil, Options{})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	content := `keys:
  - id: 1
    name: prod
    key: abcdef
emails:
  - id: 1
    keyId: 1
    recipient: a@b.com
    subject: Hi
    status: sent
    timestamp: 2024-01-01T00:00:00Z
routes:
  - method: GET
    path: /api/v1/metrics
    delay: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fixture.Keys, 1)
	require.Len(t, fixture.Emails, 1)
	assert.Equal(t, 2024, fixture.Emails[0].Timestamp.Year())
	assert.Equal(t, 10, fixture.Routes[0].Delay)

	out := filepath.Join(dir, "fixture.json")
	require.NoError(t, SaveFixture(fixture, out))
	reloaded, err := LoadFixture(out)
	require.NoError(t, err)
	assert.Equal(t, fixture.Keys[0].Name, reloaded.Keys[0].Name)
}

func TestValidateFixture(t *testing.T) {
	tests := []struct {
		name    string
		fixture Fixture
	}{
		{"duplicate key id", Fixture{Keys: []FixtureKey{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}}},
		{"missing key name", Fixture{Keys: []FixtureKey{{ID: 1}}}},
		{"unknown key reference", Fixture{Emails: []FixtureEmail{{KeyID: 5, Recipient: "x", Status: "sent"}}}},
		{"bad status", Fixture{Keys: []FixtureKey{{ID: 1, Name: "a"}}, Emails: []FixtureEmail{{KeyID: 1, Recipient: "x", Status: "bounced"}}}},
		{"bad path type", Fixture{Routes: []Route{{Method: "GET", Path: "/", PathType: "regex"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateFixture(&tt.fixture))
		})
	}
}
