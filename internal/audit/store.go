// Package audit persists the admin audit trail: every successful
// mutation made through the console ends up as one row in audit_log,
// delivered asynchronously via the Kafka audit topic.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Entry is one persisted audit record. Payload keeps the full event
// JSON for later inspection.
type Entry struct {
	ID         int64     `db:"id" json:"id"`
	EventID    string    `db:"event_id" json:"event_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Payload    []byte    `db:"payload" json:"payload"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new audit store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert writes one audit entry. The unique event_id constraint makes
// redelivered Kafka messages harmless.
func (s *Store) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_log (event_id, event_type, session_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		entry.EventID, entry.EventType, entry.SessionID, entry.Payload, entry.OccurredAt)
	return err
}

// Recent retrieves the most recent audit entries
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM audit_log ORDER BY occurred_at DESC LIMIT $1", limit)
	return entries, err
}

// BySession retrieves audit entries for one session
func (s *Store) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM audit_log WHERE session_id = $1 ORDER BY occurred_at DESC", sessionID)
	return entries, err
}

// IsEventProcessed checks if an event has already been persisted
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM audit_log WHERE event_id = $1)", eventID)
	return exists, err
}
