package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"eventify/models"

	_ "modernc.org/sqlite"
)

// openTestStore spins up a throwaway SQLite database. A single
// connection keeps concurrent transactions serialized the same way the
// production database would.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "eventify_test.db")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbPath))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, store *Store, username string) models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	})
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestEvent(t *testing.T, store *Store, creatorID string, eventTime time.Time, deadline *time.Time) models.Event {
	t.Helper()
	event, err := store.CreateEvent(context.Background(), models.Event{
		Title:                "Go Conference",
		Description:          "A conference about Go",
		Location:             "Main Auditorium",
		Category:             "Tech",
		OrganizingClub:       "Coding Club",
		CreatedBy:            creatorID,
		EventTime:            eventTime,
		RegistrationDeadline: deadline,
	})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}

// setEventTime rewrites an event's time directly, to simulate an event
// that already happened without tripping the registration deadline.
func setEventTime(t *testing.T, store *Store, eventID string, eventTime time.Time) {
	t.Helper()
	_, err := store.DB().Exec("UPDATE events SET event_time = ?, registration_deadline = '' WHERE id = ?",
		eventTime.UTC().Format(time.RFC3339), eventID)
	if err != nil {
		t.Fatalf("Failed to rewrite event time: %v", err)
	}
}

func countRows(t *testing.T, store *Store, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := store.DB().QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

func participantsCount(t *testing.T, store *Store, eventID string) int {
	t.Helper()
	var n int
	if err := store.DB().QueryRow("SELECT participants_count FROM events WHERE id = ?", eventID).Scan(&n); err != nil {
		t.Fatalf("Failed to read participants_count: %v", err)
	}
	return n
}
