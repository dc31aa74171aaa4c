package mock

import "time"

// Fixture seeds the mock backend
type Fixture struct {
	Keys   []FixtureKey   `json:"keys" yaml:"keys"`
	Emails []FixtureEmail `json:"emails" yaml:"emails"`
	Routes []Route        `json:"routes,omitempty" yaml:"routes,omitempty"` // Per-route failure and latency injection
}

// FixtureKey is a stored API key
type FixtureKey struct {
	ID        int64      `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Key       string     `json:"key" yaml:"key"`                                 // Full secret; generated when empty
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"` // Defaults to load time
	Revoked   bool       `json:"revoked,omitempty" yaml:"revoked,omitempty"`     // Revoked keys are hidden from the list
}

// FixtureEmail is a stored email log entry
type FixtureEmail struct {
	ID        int64     `json:"id" yaml:"id"`
	KeyID     int64     `json:"keyId" yaml:"keyId"` // Key that sent the email
	Recipient string    `json:"recipient" yaml:"recipient"`
	Subject   string    `json:"subject" yaml:"subject"`
	Status    string    `json:"status" yaml:"status"` // sent, failed, pending
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Route overrides the behaviour of one endpoint
type Route struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`         // Route description
	Method   string `json:"method" yaml:"method"`                         // HTTP method (GET, POST, etc.)
	Path     string `json:"path" yaml:"path"`                             // URL path
	PathType string `json:"pathType,omitempty" yaml:"pathType,omitempty"` // exact or prefix (default: exact)
	Status   int    `json:"status,omitempty" yaml:"status,omitempty"`     // Forced status; 0 keeps the real handler
	Body     string `json:"body,omitempty" yaml:"body,omitempty"`         // Body sent with a forced status
	Delay    int    `json:"delay,omitempty" yaml:"delay,omitempty"`       // Response delay in milliseconds
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	MatchedRule string            `json:"matchedRule"`
	Status      int               `json:"status"`
	Duration    time.Duration     `json:"duration"`
}
