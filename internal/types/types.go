package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Email delivery statuses reported by the backend
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// instantLayouts lists the accepted timestamp layouts, most specific first
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
}

// EmailRecord represents one entry of the email log
type EmailRecord struct {
	ID        int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Status    string  `json:"status" yaml:"status"`
	Recipient string  `json:"recipient" yaml:"recipient"`
	Subject   string  `json:"subject" yaml:"subject"`
	KeyName   *string `json:"key_name" yaml:"key_name"`
	Timestamp Instant `json:"timestamp" yaml:"timestamp"`
}

// MetricsSnapshot represents the aggregate sending metrics
type MetricsSnapshot struct {
	Total      int     `json:"total" yaml:"total"`
	Sent       int     `json:"sent" yaml:"sent"`
	Failed     int     `json:"failed" yaml:"failed"`
	Rate       float64 `json:"rate" yaml:"rate"`
	ActiveKeys int     `json:"active_keys,omitempty" yaml:"active_keys,omitempty"`
}

// APIKeyRecord represents an active API key with its masked token
type APIKeyRecord struct {
	ID        KeyID    `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	KeyToken  string   `json:"key_token" yaml:"key_token"`
	CreatedAt *Instant `json:"created_at" yaml:"created_at"`
	LastUsed  *Instant `json:"last_used" yaml:"last_used"`
}

// CreatedKey is the response of a key creation, carrying the full secret once
type CreatedKey struct {
	ID   KeyID  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Key  string `json:"key" yaml:"key"`
}

// CreateKeyRequest is the body of POST /api/v1/keys
type CreateKeyRequest struct {
	Name string `json:"name"`
}

// KeyID is an opaque key identifier that accepts JSON numbers and strings
type KeyID string

// String returns the identifier as a string
func (id KeyID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both `12` and `"12"`
func (id *KeyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid key id: %w", err)
		}
		*id = KeyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}
	*id = KeyID(n.String())
	return nil
}

// Instant wraps time.Time with the lenient parsing the backend requires
type Instant struct {
	time.Time
}

// NewInstant wraps t
func NewInstant(t time.Time) Instant {
	return Instant{Time: t}
}

// ParseInstant parses a timestamp in any of the layouts emitted by the backend.
// Layouts without a zone are interpreted as UTC.
func ParseInstant(value string) (Instant, error) {
	value = strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Instant{Time: t}, nil
		}
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return Instant{Time: time.Unix(secs, 0).UTC()}, nil
	}
	return Instant{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// UnmarshalJSON parses a JSON timestamp. A value in no known layout leaves
// the zero Instant so one bad row does not fail a whole list.
func (i *Instant) UnmarshalJSON(data []byte) error {
	*i = Instant{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	if parsed, err := ParseInstant(s); err == nil {
		*i = parsed
	}
	return nil
}

// MarshalJSON always emits RFC 3339
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.UTC().Format(time.RFC3339Nano))
}

// MarshalYAML emits RFC 3339 so YAML output matches JSON output
func (i Instant) MarshalYAML() (interface{}, error) {
	if i.IsZero() {
		return nil, nil
	}
	return i.UTC().Format(time.RFC3339Nano), nil
}

// UnmarshalYAML accepts the same layouts as UnmarshalJSON
func (i *Instant) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*i = Instant{}
		return nil
	}
	parsed, err := ParseInstant(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// KeyNameOr returns the key name or fallback when absent
func (e EmailRecord) KeyNameOr(fallback string) string {
	if e.KeyName == nil || *e.KeyName == "" {
		return fallback
	}
	return *e.KeyName
}

// Activity kinds recorded in the local history
const (
	ActivityCreateKey = "create_key"
	ActivityRevokeKey = "revoke_key"
	ActivityLogout    = "logout"
)

// ActivityEntry is one dashboard action kept in the local history
type ActivityEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Action    string    `json:"action" yaml:"action"`
	KeyID     KeyID     `json:"key_id,omitempty" yaml:"key_id,omitempty"`
	KeyName   string    `json:"key_name,omitempty" yaml:"key_name,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the action completed without error
func (a ActivityEntry) Succeeded() bool {
	return a.Error == ""
}
