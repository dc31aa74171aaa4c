package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/relaydash/internal/config"
	"github.com/studiowebux/relaydash/internal/migrations"
	"github.com/studiowebux/relaydash/internal/types"
)

// timestampLayout keeps stored timestamps sortable as text
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Manager stores dashboard actions for one backend in a SQLite database
type Manager struct {
	db      *sql.DB
	baseURL string
	now     func() time.Time
}

// Query narrows a history listing
type Query struct {
	// Limit caps the number of entries; 0 means no limit
	Limit  int
	Action string
	// AllBackends lists entries recorded against any base URL
	AllBackends bool
}

// Open opens (or creates) the history database at dbPath and scopes it to baseURL
func Open(ctx context.Context, dbPath, baseURL string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer at a time; the TUI and CLI never need more
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, baseURL: baseURL, now: time.Now}, nil
}

// Record stores one entry. A zero timestamp is set to the current time.
func (m *Manager) Record(ctx context.Context, entry types.ActivityEntry) error {
	if entry.Action == "" {
		return fmt.Errorf("activity entry requires an action")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = m.now()
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO activity (timestamp, action, key_id, key_name, error, base_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.Action,
		nullable(entry.KeyID.String()),
		nullable(entry.KeyName),
		nullable(entry.Error),
		m.baseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity entry: %w", err)
	}
	return nil
}

// Load returns matching entries, newest first
func (m *Manager) Load(ctx context.Context, q Query) ([]types.ActivityEntry, error) {
	var (
		where []string
		args  []interface{}
	)
	if !q.AllBackends {
		where = append(where, "base_url = ?")
		args = append(args, m.baseURL)
	}
	if q.Action != "" {
		where = append(where, "action = ?")
		args = append(args, q.Action)
	}

	query := `
		SELECT id, timestamp, action, COALESCE(key_id, ''), COALESCE(key_name, ''), COALESCE(error, '')
		FROM activity`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	entries := []types.ActivityEntry{}
	for rows.Next() {
		var (
			entry     types.ActivityEntry
			timestamp string
			keyID     string
		)
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Action, &keyID, &entry.KeyName, &entry.Error); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		parsed, err := time.Parse(timestampLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q in history: %w", timestamp, err)
		}
		entry.Timestamp = parsed
		entry.KeyID = types.KeyID(keyID)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of entries recorded for this backend
func (m *Manager) Count(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity WHERE base_url = ?", m.baseURL).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

// Clear deletes every entry recorded for this backend
func (m *Manager) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "DELETE FROM activity WHERE base_url = ?", m.baseURL); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
