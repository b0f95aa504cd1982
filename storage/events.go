package storage

import (
	"context"
	"database/sql"
	"time"

	"eventify/models"

	"github.com/google/uuid"
)

func (s *Store) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	event.ID = uuid.NewString()
	event.ParticipantsCount = 0
	event.ViewsCount = 0
	now := formatTime(time.Now())
	event.CreatedAt = now
	event.UpdatedAt = now

	deadline := ""
	if event.RegistrationDeadline != nil {
		deadline = formatTime(*event.RegistrationDeadline)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, image, location, category, organizing_club, created_by,
			event_time, registration_deadline, participants_count, views_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		event.ID, event.Title, event.Description, event.Image, event.Location, event.Category,
		event.OrganizingClub, event.CreatedBy, formatTime(event.EventTime), deadline, now, now)
	if err != nil {
		return models.Event{}, err
	}
	event.RegistrationOpen = time.Now().Before(event.EffectiveDeadline()) || time.Now().Equal(event.EffectiveDeadline())
	return event, nil
}

const eventColumns = `id, title, description, image, location, category, organizing_club, created_by,
	event_time, registration_deadline, participants_count, views_count, created_at, updated_at`

func (s *Store) GetEventByID(ctx context.Context, id string) (models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	return scanEvent(row.Scan)
}

// ListEvents returns all events, newest event time first, optionally
// filtered by category, with the creator's public profile joined in.
func (s *Store) ListEvents(ctx context.Context, category string) ([]models.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.image, e.location, e.category, e.organizing_club, e.created_by,
			e.event_time, e.registration_deadline, e.participants_count, e.views_count, e.created_at, e.updated_at,
			COALESCE(u.username, ''), COALESCE(u.email, '')
		FROM events e
		LEFT JOIN users u ON u.id = e.created_by`
	args := []interface{}{}
	if category != "" {
		query += " WHERE e.category = ?"
		args = append(args, category)
	}
	query += " ORDER BY e.event_time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var username, email string
		event, err := scanEvent(func(dest ...interface{}) error {
			dest = append(dest, &username, &email)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, err
		}
		event.CreatorUsername = username
		event.CreatorEmail = email
		events = append(events, event)
	}
	return events, rows.Err()
}

type EventUpdate struct {
	Title                *string
	Description          *string
	Location             *string
	Category             *string
	OrganizingClub       *string
	Image                *string
	EventTime            *time.Time
	RegistrationDeadline *time.Time
}

func (s *Store) UpdateEvent(ctx context.Context, id string, update EventUpdate) (models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return models.Event{}, err
	}

	if update.Title != nil {
		event.Title = *update.Title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.Category != nil {
		event.Category = *update.Category
	}
	if update.OrganizingClub != nil {
		event.OrganizingClub = *update.OrganizingClub
	}
	if update.Image != nil {
		event.Image = *update.Image
	}
	if update.EventTime != nil {
		event.EventTime = *update.EventTime
	}
	if update.RegistrationDeadline != nil {
		event.RegistrationDeadline = update.RegistrationDeadline
	}

	deadline := ""
	if event.RegistrationDeadline != nil {
		deadline = formatTime(*event.RegistrationDeadline)
	}
	event.UpdatedAt = formatTime(time.Now())

	_, err = s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, image = ?, location = ?, category = ?,
			organizing_club = ?, event_time = ?, registration_deadline = ?, updated_at = ?
		WHERE id = ?`,
		event.Title, event.Description, event.Image, event.Location, event.Category,
		event.OrganizingClub, formatTime(event.EventTime), deadline, event.UpdatedAt, id)
	if err != nil {
		return models.Event{}, err
	}
	event.RegistrationOpen = !time.Now().After(event.EffectiveDeadline())
	return event, nil
}

// DeleteEvent removes the event together with its registrations, view
// records and certificate rows in one transaction, so no orphaned rows
// can ever be observed.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRow(res, ErrEventNotFound); err != nil {
		return err
	}
	for _, stmt := range []string{
		"DELETE FROM registrations WHERE event_id = ?",
		"DELETE FROM event_views WHERE event_id = ?",
		"DELETE FROM certificates WHERE event_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordEventView counts each viewer once for the lifetime of the event.
// The unique index on (event_id, user_id) arbitrates concurrent first
// views; the counter is only bumped when the insert actually lands.
func (s *Store) RecordEventView(ctx context.Context, userID, eventID string) (counted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE id = ?", eventID).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, ErrEventNotFound
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO event_views (event_id, user_id, viewed_at) VALUES (?, ?, ?)",
		eventID, userID, formatTime(time.Now()))
	if isDuplicateKeyErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE events SET views_count = views_count + 1 WHERE id = ?", eventID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// TopAttendedEvent ranks events by their registration row count, not by
// the cached counter.
func (s *Store) TopAttendedEvent(ctx context.Context) (models.TopAttendedEvent, error) {
	var top models.TopAttendedEvent
	var eventTime string
	err := s.db.QueryRowContext(ctx, `
		SELECT e.id, e.title, e.image, e.event_time, COUNT(r.id) AS total_registrations
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		GROUP BY e.id, e.title, e.image, e.event_time
		ORDER BY total_registrations DESC
		LIMIT 1`).Scan(&top.EventID, &top.Title, &top.Image, &eventTime, &top.TotalRegistrations)
	if err == sql.ErrNoRows {
		return models.TopAttendedEvent{}, ErrEventNotFound
	}
	if err != nil {
		return models.TopAttendedEvent{}, err
	}
	top.EventTime, err = parseTime(eventTime)
	return top, err
}

func (s *Store) TopViewedEvent(ctx context.Context) (models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY views_count DESC, created_at DESC LIMIT 1")
	return scanEvent(row.Scan)
}

func scanEvent(scan func(dest ...interface{}) error) (models.Event, error) {
	var event models.Event
	var eventTime, deadline string
	err := scan(&event.ID, &event.Title, &event.Description, &event.Image, &event.Location,
		&event.Category, &event.OrganizingClub, &event.CreatedBy, &eventTime, &deadline,
		&event.ParticipantsCount, &event.ViewsCount, &event.CreatedAt, &event.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	event.EventTime, err = parseTime(eventTime)
	if err != nil {
		return models.Event{}, err
	}
	if deadline != "" {
		t, err := parseTime(deadline)
		if err != nil {
			return models.Event{}, err
		}
		event.RegistrationDeadline = &t
	}
	event.RegistrationOpen = !time.Now().After(event.EffectiveDeadline())
	return event, nil
}
