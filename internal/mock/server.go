package mock

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/logging"
	"github.com/studiowebux/relaydash/internal/relay"
	"github.com/studiowebux/relaydash/internal/types"
)

const (
	// maxListedEmails mirrors the backend's page size
	maxListedEmails = 100
	maxRequestLogs  = 1000

	maskedPrefix     = "rk_live_"
	maskedVisible    = 4
	naiveISOLayout   = "2006-01-02T15:04:05.000000"
	defaultNameStamp = "2006-01-02 15:04"
	loginPagePath    = "/login"
)

// Options configures a Server
type Options struct {
	// Session, when set, is the only session cookie value accepted by the
	// dashboard routes; other requests are redirected to the login page.
	Session string
	Logger  *zap.Logger
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

type storedKey struct {
	FixtureKey
	createdAt time.Time
}

// Server is an in-memory RelayMail dashboard backend
type Server struct {
	mu        sync.RWMutex
	keys      []*storedKey
	emails    []FixtureEmail
	nextKeyID int64
	routes    []Route

	session string
	now     func() time.Time
	logger  *zap.Logger
	router  chi.Router

	httpServer *http.Server
	addr       string

	logs      []RequestLog
	logsMutex sync.RWMutex
	notifyCh  chan struct{} // Channel to notify when new log arrives
}

// NewServer creates a mock backend seeded with fixture (may be nil)
func NewServer(fixture *Fixture, opts Options) (*Server, error) {
	if fixture == nil {
		fixture = &Fixture{}
	}
	if err := validateFixture(fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	s := &Server{
		emails:   append([]FixtureEmail(nil), fixture.Emails...),
		routes:   append([]Route(nil), fixture.Routes...),
		session:  opts.Session,
		now:      now,
		logger:   logging.OrNop(opts.Logger),
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100), // Buffered channel for notifications
	}

	for _, key := range fixture.Keys {
		stored := &storedKey{FixtureKey: key}
		if stored.Key == "" {
			secret, err := generateSecret()
			if err != nil {
				return nil, err
			}
			stored.Key = secret
		}
		if key.CreatedAt != nil {
			stored.createdAt = key.CreatedAt.UTC()
		} else {
			stored.createdAt = now()
		}
		s.keys = append(s.keys, stored)
		if key.ID >= s.nextKeyID {
			s.nextKeyID = key.ID + 1
		}
	}
	if s.nextKeyID == 0 {
		s.nextKeyID = 1
	}

	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the HTTP handler serving the REST contract
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordRequest)
	r.Use(s.applyOverrides)

	r.Get(loginPagePath, s.handleLoginPage)
	r.Get(relay.PathLogout, s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get(relay.PathEmails, s.handleListEmails)
		r.Get(relay.PathMetrics, s.handleMetrics)
		r.Get(relay.PathKeys, s.handleListKeys)
		r.Post(relay.PathKeys, s.handleCreateKey)
		r.Delete(relay.PathKeys+"/{id}", s.handleRevokeKey)
	})

	return r
}

// Start listens on addr in the background
func (s *Server) Start(addr string) error {
	s.addr = addr
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("mock server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server address
func (s *Server) GetAddress() string {
	return "http://" + s.addr
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "<!DOCTYPE html><html><body><form method=\"post\">Login</form></body></html>")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	emails := append([]FixtureEmail(nil), s.emails...)
	names := make(map[int64]string, len(s.keys))
	for _, key := range s.keys {
		names[key.ID] = key.Name
	}
	s.mu.RUnlock()

	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].Timestamp.After(emails[j].Timestamp)
	})
	if len(emails) > maxListedEmails {
		emails = emails[:maxListedEmails]
	}

	out := make([]map[string]interface{}, 0, len(emails))
	for _, email := range emails {
		var keyName interface{}
		if name, ok := names[email.KeyID]; ok {
			keyName = name
		}
		out = append(out, map[string]interface{}{
			"id":        email.ID,
			"recipient": email.Recipient,
			"subject":   email.Subject,
			"status":    email.Status,
			"timestamp": email.Timestamp.UTC().Format(http.TimeFormat),
			"key_name":  keyName,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, sent, failed := 0, 0, 0
	for _, email := range s.emails {
		total++
		switch email.Status {
		case types.StatusSent:
			sent++
		case types.StatusFailed:
			failed++
		}
	}

	activeKeys := 0
	for _, key := range s.keys {
		if !key.Revoked {
			activeKeys++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":       total,
		"sent":        sent,
		"failed":      failed,
		"rate":        SuccessRate(sent, total),
		"active_keys": activeKeys,
	})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]map[string]interface{}, 0, len(s.keys))
	for _, key := range s.keys {
		if key.Revoked {
			continue
		}
		var lastUsed interface{}
		if t, ok := s.lastUsedLocked(key.ID); ok {
			lastUsed = t.Format(naiveISOLayout)
		}
		out = append(out, map[string]interface{}{
			"id":         key.ID,
			"name":       key.Name,
			"key_token":  MaskKey(key.Key),
			"created_at": key.createdAt.Format(naiveISOLayout),
			"last_used":  lastUsed,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	data, _ := io.ReadAll(r.Body)
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
	}

	now := s.now()
	name := fmt.Sprintf("Key %s", now.Format(defaultNameStamp))
	if body.Name != nil {
		name = *body.Name
	}

	secret, err := generateSecret()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	key := &storedKey{
		FixtureKey: FixtureKey{ID: s.nextKeyID, Name: name, Key: secret},
		createdAt:  now,
	}
	s.nextKeyID++
	s.keys = append(s.keys, key)
	s.mu.Unlock()

	s.logger.Info("key created", zap.Int64("id", key.ID), zap.String("name", name))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      key.ID,
		"name":    key.Name,
		"key":     key.Key,
		"created": now.Format(http.TimeFormat),
	})
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	var found *storedKey
	for _, key := range s.keys {
		if key.ID == id {
			found = key
			break
		}
	}
	if found != nil {
		found.Revoked = true
	}
	s.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Key not found"})
		return
	}

	s.logger.Info("key revoked", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Key revoked"})
}

// lastUsedLocked returns the most recent email timestamp for keyID; s.mu must be held
func (s *Server) lastUsedLocked(keyID int64) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, email := range s.emails {
		if email.KeyID != keyID {
			continue
		}
		if !found || email.Timestamp.After(latest) {
			latest = email.Timestamp.UTC()
			found = true
		}
	}
	return latest, found
}

// requireSession redirects to the login page when the session cookie does not match
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.session != "" {
			cookie, err := r.Cookie(relay.SessionCookieName)
			if err != nil || cookie.Value != s.session {
				http.Redirect(w, r, loginPagePath+"?next="+r.URL.Path, http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// applyOverrides applies the first matching route override (delay and/or forced status)
func (s *Server) applyOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := s.findMatchingRoute(r.Method, r.URL.Path)
		if route == nil {
			next.ServeHTTP(w, r)
			return
		}

		if route.Delay > 0 {
			select {
			case <-time.After(time.Duration(route.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}

		if route.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		w.WriteHeader(route.Status)
		_, _ = io.WriteString(w, route.Body)
	})
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.routes {
		route := s.routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		}

		if matched {
			return &route
		}
	}

	return nil
}

// SetRoutes replaces the route overrides
func (s *Server) SetRoutes(routes []Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append([]Route(nil), routes...)
}

// AddEmail appends an email log entry
func (s *Server) AddEmail(email FixtureEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// recordRequest logs every request, keeping the last maxRequestLogs entries
func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(bodyBytes)))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		matched := "none"
		if route := s.findMatchingRoute(r.Method, r.URL.Path); route != nil {
			matched = route.Name
			if matched == "" {
				matched = fmt.Sprintf("%s %s", route.Method, route.Path)
			}
		}

		s.logRequest(RequestLog{
			Timestamp:   start,
			Method:      r.Method,
			Path:        r.URL.Path,
			Headers:     flattenHeaders(r.Header),
			Body:        string(bodyBytes),
			MatchedRule: matched,
			Status:      recorder.status,
			Duration:    time.Since(start),
		})
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxRequestLogs {
		s.logs = s.logs[len(s.logs)-maxRequestLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// MaskKey returns the display form of a secret: rk_live_<first four>...
func MaskKey(secret string) string {
	if secret == "" {
		return maskedPrefix + "..."
	}
	visible := secret
	if len(visible) > maskedVisible {
		visible = visible[:maskedVisible]
	}
	return maskedPrefix + visible + "..."
}

// SuccessRate returns sent/total as a percentage rounded to one decimal, 0 when total is 0
func SuccessRate(sent, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(sent)/float64(total)*1000) / 10
}

// generateSecret returns 32 random bytes, URL-safe base64 encoded
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// flattenHeaders converts http.Header to map[string]string (first value only)
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}
