package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/logging"
	"github.com/studiowebux/relaydash/internal/types"
)

// REST paths consumed by the dashboard
const (
	PathEmails  = "/api/v1/emails"
	PathMetrics = "/api/v1/metrics"
	PathKeys    = "/api/v1/keys"
	PathLogout  = "/logout"

	// SessionCookieName is the cookie carrying the authenticated dashboard session
	SessionCookieName = "session"

	// RequestIDHeader correlates client log lines with backend logs
	RequestIDHeader = "X-Request-ID"

	// CreateFailedMessage is reported when the backend refuses a key creation
	CreateFailedMessage = "Failed to create key"
)

// Operation names used in errors and logs
const (
	OpFetchEmails  = "fetch emails"
	OpFetchMetrics = "fetch metrics"
	OpFetchKeys    = "fetch keys"
	OpCreateKey    = "create key"
	OpRevokeKey    = "revoke key"
	OpEndSession   = "end session"
)

// HTTPDoer is the subset of *http.Client used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client
type Options struct {
	BaseURL string
	// Session is the value of the session cookie; empty sends no cookie
	Session string
	// Timeout bounds each request; zero means no timeout
	Timeout time.Duration
	Logger  *zap.Logger
	// HTTPClient overrides the transport, mainly for tests
	HTTPClient HTTPDoer
}

// Client performs the dashboard's REST calls
type Client struct {
	baseURL string
	session string
	http    HTTPDoer
	logger  *zap.Logger
}

// NewClient creates a client for the backend at opts.BaseURL
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	logoutPath := parsed.Path + PathLogout
	doer := opts.HTTPClient
	if doer == nil {
		doer = &http.Client{
			Timeout: opts.Timeout,
			// The logout route redirects to the landing page; the dashboard never follows it
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > 0 && via[0].URL.Path == logoutPath {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return &Client{
		baseURL: base,
		session: opts.Session,
		http:    doer,
		logger:  logging.OrNop(opts.Logger),
	}, nil
}

// BaseURL returns the normalised backend URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LogoutURL returns the absolute logout URL
func (c *Client) LogoutURL() string {
	return c.baseURL + PathLogout
}

// FetchEmails lists the most recent emails. An empty list is not an error.
func (c *Client) FetchEmails(ctx context.Context) ([]types.EmailRecord, error) {
	var emails []types.EmailRecord
	if err := c.getJSON(ctx, OpFetchEmails, PathEmails, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []types.EmailRecord{}
	}
	return emails, nil
}

// FetchMetrics returns the aggregate counters
func (c *Client) FetchMetrics(ctx context.Context) (*types.MetricsSnapshot, error) {
	var metrics types.MetricsSnapshot
	if err := c.getJSON(ctx, OpFetchMetrics, PathMetrics, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// FetchKeys lists the active API keys. An empty list is not an error.
func (c *Client) FetchKeys(ctx context.Context) ([]types.APIKeyRecord, error) {
	var keys []types.APIKeyRecord
	if err := c.getJSON(ctx, OpFetchKeys, PathKeys, &keys); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []types.APIKeyRecord{}
	}
	return keys, nil
}

// CreateKey creates a key named name and returns the full secret
func (c *Client) CreateKey(ctx context.Context, name string) (*types.CreatedKey, error) {
	payload, err := json.Marshal(types.CreateKeyRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, body, err := c.do(ctx, OpCreateKey, http.MethodPost, PathKeys, payload)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, &RequestRejected{Op: OpCreateKey, Status: resp.StatusCode, Message: CreateFailedMessage}
	}

	var created types.CreatedKey
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &ParseError{Op: OpCreateKey, Err: err}
	}
	return &created, nil
}

// RevokeKey deletes the key with the given id. The response status is not
// inspected: only a transport failure is reported.
func (c *Client) RevokeKey(ctx context.Context, id types.KeyID) error {
	path := PathKeys + "/" + url.PathEscape(id.String())
	_, _, err := c.do(ctx, OpRevokeKey, http.MethodDelete, path, nil)
	return err
}

// EndSession calls the logout route so the server forgets the session.
// The redirect it answers with is not followed.
func (c *Client) EndSession(ctx context.Context) error {
	_, _, err := c.do(ctx, OpEndSession, http.MethodGet, PathLogout, nil)
	return err
}

// getJSON performs a GET and decodes a 2xx JSON body into out
func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	resp, body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		return &RequestRejected{Op: op, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

// do sends one request and reads the whole body
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) (*http.Response, []byte, error) {
	startTime := time.Now()
	requestID := uuid.NewString()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)),
	)

	return resp, body, nil
}

// isSuccess returns true if status code is 2xx
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
