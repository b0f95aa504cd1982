package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Store is the registration ledger: it owns every state transition on
// users, events, registrations and certificates. The database is the
// single source of truth; nothing is cached across requests.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// timeLayout is how instants are stored. Always UTC.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// isDuplicateKeyErr recognizes unique-constraint violations from both
// MySQL ("Duplicate entry ... for key ...") and SQLite ("UNIQUE
// constraint failed"). The unique indexes are the arbiter for races on
// (user, event) pairs, so losers must be able to tell this apart from a
// real failure.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// InitSchema creates all tables. The DDL sticks to the portable subset
// understood by both MySQL and SQLite: UUID string keys generated in Go,
// instants stored as UTC RFC3339 strings, counters as plain integers.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			profile_image VARCHAR(512) NOT NULL DEFAULT '',
			role VARCHAR(16) NOT NULL DEFAULT 'user',
			department VARCHAR(128) NOT NULL DEFAULT '',
			student_id VARCHAR(64) NOT NULL DEFAULT '',
			refresh_token VARCHAR(512) NOT NULL DEFAULT '',
			created_at VARCHAR(32) NOT NULL,
			updated_at VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pending_users (
			email VARCHAR(255) PRIMARY KEY,
			username VARCHAR(64) NOT NULL,
			password VARCHAR(255) NOT NULL,
			profile_image VARCHAR(512) NOT NULL DEFAULT '',
			otp VARCHAR(8) NOT NULL,
			otp_expiry VARCHAR(32) NOT NULL,
			created_at VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			image VARCHAR(512) NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL,
			category VARCHAR(32) NOT NULL,
			organizing_club VARCHAR(255) NOT NULL,
			created_by VARCHAR(36) NOT NULL,
			event_time VARCHAR(32) NOT NULL,
			registration_deadline VARCHAR(32) NOT NULL DEFAULT '',
			participants_count INTEGER NOT NULL DEFAULT 0,
			views_count INTEGER NOT NULL DEFAULT 0,
			created_at VARCHAR(32) NOT NULL,
			updated_at VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			event_id VARCHAR(36) NOT NULL,
			student_id VARCHAR(64) NOT NULL,
			department VARCHAR(128) NOT NULL,
			registered_at VARCHAR(32) NOT NULL,
			UNIQUE (user_id, event_id)
		)`,
		`CREATE TABLE IF NOT EXISTS event_views (
			event_id VARCHAR(36) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			viewed_at VARCHAR(32) NOT NULL,
			UNIQUE (event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS certificates (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			event_id VARCHAR(36) NOT NULL,
			certificate_url VARCHAR(512) NOT NULL,
			generated_at VARCHAR(32) NOT NULL,
			UNIQUE (user_id, event_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
