package view

import (
	"strconv"
	"time"

	"github.com/studiowebux/relaydash/internal/types"
)

// Element ids of the dashboard regions
const (
	TargetEmails       = "emails-table"
	TargetKeys         = "keys-list"
	TargetMetricTotal  = "metric-total"
	TargetMetricSent   = "metric-sent"
	TargetMetricFailed = "metric-failed"
	TargetMetricRate   = "metric-rate"
	TargetGeneratedKey = "generated-key-display"
	TargetKeyNameInput = "key-name-input"
)

// Display fallbacks
const (
	UnknownKeyName = "Unknown"
	CreatedJustNow = "Just now"
	NeverUsed      = "Never used"
	InvalidDate    = "Invalid Date"
	LastUsedPrefix = "Last used "
	CreatedPrefix  = "Created "
	BadgePrefix    = "badge-"
)

// Region identifies one independently refreshed part of the dashboard
type Region string

const (
	RegionEmails  Region = "emails"
	RegionMetrics Region = "metrics"
	RegionKeys    Region = "keys"
)

// Regions lists every region in page order
var Regions = []Region{RegionMetrics, RegionEmails, RegionKeys}

// Formatter renders instants the way the dashboard shows them
type Formatter struct {
	// Location is the zone instants are shown in; nil means UTC
	Location *time.Location
}

func (f Formatter) in(t time.Time) time.Time {
	if f.Location == nil {
		return t.UTC()
	}
	return t.In(f.Location)
}

// DateTime formats a full timestamp, e.g. "1/2/2024, 3:04:05 PM"
func (f Formatter) DateTime(t time.Time) string {
	return f.in(t).Format("1/2/2006, 3:04:05 PM")
}

// Date formats a calendar date, e.g. "1/2/2024"
func (f Formatter) Date(t time.Time) string {
	return f.in(t).Format("1/2/2006")
}

// EmailRow is one rendered line of the email log
type EmailRow struct {
	Status     string
	BadgeClass string
	Recipient  string
	Subject    string
	KeyName    string
	Timestamp  string
}

// KeyRow is one rendered API key entry
type KeyRow struct {
	ID          string
	Name        string
	MaskedToken string
	Created     string
	Usage       string
}

// MetricFields holds the four metric texts keyed by their element ids
type MetricFields struct {
	Total  string
	Sent   string
	Failed string
	Rate   string
}

// BadgeClass returns the badge class for an email status
func BadgeClass(status string) string {
	return BadgePrefix + status
}

// EmailRows builds one row per email, preserving order
func EmailRows(emails []types.EmailRecord, f Formatter) []EmailRow {
	rows := make([]EmailRow, 0, len(emails))
	for _, email := range emails {
		timestamp := InvalidDate
		if !email.Timestamp.IsZero() {
			timestamp = f.DateTime(email.Timestamp.Time)
		}
		rows = append(rows, EmailRow{
			Status:     email.Status,
			BadgeClass: BadgeClass(email.Status),
			Recipient:  email.Recipient,
			Subject:    email.Subject,
			KeyName:    email.KeyNameOr(UnknownKeyName),
			Timestamp:  timestamp,
		})
	}
	return rows
}

// KeyRows builds one row per key, preserving order
func KeyRows(keys []types.APIKeyRecord, f Formatter) []KeyRow {
	rows := make([]KeyRow, 0, len(keys))
	for _, key := range keys {
		created := CreatedJustNow
		if key.CreatedAt != nil && !key.CreatedAt.IsZero() {
			created = f.Date(key.CreatedAt.Time)
		}

		usage := NeverUsed
		if key.LastUsed != nil && !key.LastUsed.IsZero() {
			usage = LastUsedPrefix + f.DateTime(key.LastUsed.Time)
		}

		rows = append(rows, KeyRow{
			ID:          key.ID.String(),
			Name:        key.Name,
			MaskedToken: key.KeyToken,
			Created:     created,
			Usage:       usage,
		})
	}
	return rows
}

// Metrics converts a snapshot into display texts
func Metrics(m types.MetricsSnapshot) MetricFields {
	return MetricFields{
		Total:  strconv.Itoa(m.Total),
		Sent:   strconv.Itoa(m.Sent),
		Failed: strconv.Itoa(m.Failed),
		Rate:   FormatRate(m.Rate),
	}
}

// FormatRate prints a percentage with the shortest exact representation: 97.5%, 100%
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}
