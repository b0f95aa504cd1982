package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"eventify/models"

	"github.com/google/uuid"
)

// RegisterForEvent creates the registration row and bumps the event's
// participant counter in one transaction, so a reader can never observe
// one without the other. The unique index on (user_id, event_id) is the
// backstop for two racing registrations: exactly one insert lands, the
// other comes back as ErrAlreadyRegistered.
//
// Identity rules: the first registration a user ever makes must carry
// studentID and department, which are persisted onto the profile; once
// stored, the profile values win and supplied ones are ignored.
func (s *Store) RegisterForEvent(ctx context.Context, userID, eventID, studentID, department string) (models.Registration, error) {
	studentID = strings.TrimSpace(studentID)
	department = strings.TrimSpace(department)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Registration{}, err
	}
	defer tx.Rollback()

	var eventTime, deadline string
	err = tx.QueryRowContext(ctx, "SELECT event_time, registration_deadline FROM events WHERE id = ?", eventID).
		Scan(&eventTime, &deadline)
	if err == sql.ErrNoRows {
		return models.Registration{}, ErrEventNotFound
	}
	if err != nil {
		return models.Registration{}, err
	}

	event := models.Event{}
	if event.EventTime, err = parseTime(eventTime); err != nil {
		return models.Registration{}, err
	}
	if deadline != "" {
		t, err := parseTime(deadline)
		if err != nil {
			return models.Registration{}, err
		}
		event.RegistrationDeadline = &t
	}
	if time.Now().After(event.EffectiveDeadline()) {
		return models.Registration{}, ErrRegistrationClosed
	}

	var storedStudentID, storedDepartment string
	err = tx.QueryRowContext(ctx, "SELECT student_id, department FROM users WHERE id = ?", userID).
		Scan(&storedStudentID, &storedDepartment)
	if err == sql.ErrNoRows {
		return models.Registration{}, ErrUserNotFound
	}
	if err != nil {
		return models.Registration{}, err
	}

	if storedStudentID != "" && storedDepartment != "" {
		// Profile identity wins over anything supplied later.
		studentID = storedStudentID
		department = storedDepartment
	} else {
		if studentID == "" || department == "" {
			return models.Registration{}, ErrMissingIdentity
		}
		_, err = tx.ExecContext(ctx, "UPDATE users SET student_id = ?, department = ?, updated_at = ? WHERE id = ?",
			studentID, department, formatTime(time.Now()), userID)
		if err != nil {
			return models.Registration{}, err
		}
	}

	registration := models.Registration{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventID:      eventID,
		StudentID:    studentID,
		Department:   department,
		RegisteredAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (id, user_id, event_id, student_id, department, registered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		registration.ID, userID, eventID, studentID, department, formatTime(registration.RegisteredAt))
	if isDuplicateKeyErr(err) {
		return models.Registration{}, ErrAlreadyRegistered
	}
	if err != nil {
		return models.Registration{}, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE events SET participants_count = participants_count + 1 WHERE id = ?", eventID); err != nil {
		return models.Registration{}, err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicateKeyErr(err) {
			return models.Registration{}, ErrAlreadyRegistered
		}
		return models.Registration{}, err
	}
	return registration, nil
}

// UnregisterFromEvent deletes the registration row and decrements the
// counter in the same transaction. The decrement is floored at zero to
// defend against any historical counter drift.
func (s *Store) UnregisterFromEvent(ctx context.Context, userID, eventID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE id = ?", eventID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrEventNotFound
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM registrations WHERE user_id = ? AND event_id = ?", userID, eventID)
	if err != nil {
		return err
	}
	if err := requireRow(res, ErrNotRegistered); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET participants_count = CASE WHEN participants_count > 0 THEN participants_count - 1 ELSE 0 END
		WHERE id = ?`, eventID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) HasRegistration(ctx context.Context, userID, eventID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ?",
		userID, eventID).Scan(&n)
	return n > 0, err
}

// ListRegistrationsForEvent is the organizer's participant list, with
// each registrant's public profile joined in.
func (s *Store) ListRegistrationsForEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.event_id, r.student_id, r.department, r.registered_at,
			COALESCE(u.username, ''), COALESCE(u.email, ''), COALESCE(u.profile_image, '')
		FROM registrations r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.registered_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := []models.Registration{}
	for rows.Next() {
		var registration models.Registration
		var registeredAt string
		if err := rows.Scan(&registration.ID, &registration.UserID, &registration.EventID,
			&registration.StudentID, &registration.Department, &registeredAt,
			&registration.Username, &registration.Email, &registration.ProfileImage); err != nil {
			return nil, err
		}
		if registration.RegisteredAt, err = parseTime(registeredAt); err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}
	return registrations, rows.Err()
}

// ListRegistrationsForUser is the student's dashboard: every event they
// are registered for.
func (s *Store) ListRegistrationsForUser(ctx context.Context, userID string) ([]models.DashboardEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.student_id, r.department, r.registered_at,
			e.id, e.title, e.location, e.event_time, e.image
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?
		ORDER BY e.event_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dashboard := []models.DashboardEvent{}
	for rows.Next() {
		var entry models.DashboardEvent
		var registeredAt, eventTime string
		if err := rows.Scan(&entry.RegistrationID, &entry.StudentID, &entry.Department, &registeredAt,
			&entry.EventID, &entry.EventTitle, &entry.EventLocation, &eventTime, &entry.EventImage); err != nil {
			return nil, err
		}
		if entry.RegisteredAt, err = parseTime(registeredAt); err != nil {
			return nil, err
		}
		if entry.EventTime, err = parseTime(eventTime); err != nil {
			return nil, err
		}
		dashboard = append(dashboard, entry)
	}
	return dashboard, rows.Err()
}

// ReconcileParticipantCounts recounts registration rows per event and
// overwrites the cached counters. Integrity backstop for operators, not
// part of any request path.
func (s *Store) ReconcileParticipantCounts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET participants_count = (SELECT COUNT(*) FROM registrations WHERE registrations.event_id = events.id)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
