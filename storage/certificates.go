package storage

import (
	"context"
	"database/sql"
	"time"

	"eventify/models"

	"github.com/google/uuid"
)

// CertificateWaitPeriod is how long after the event ends a participant
// has to wait before a certificate can be issued.
const CertificateWaitPeriod = 7 * 24 * time.Hour

func (s *Store) GetCertificate(ctx context.Context, userID, eventID string) (models.Certificate, error) {
	var certificate models.Certificate
	var generatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, certificate_url, generated_at
		FROM certificates WHERE user_id = ? AND event_id = ?`, userID, eventID).
		Scan(&certificate.ID, &certificate.UserID, &certificate.EventID, &certificate.CertificateURL, &generatedAt)
	if err == sql.ErrNoRows {
		return models.Certificate{}, ErrCertificateNotFound
	}
	if err != nil {
		return models.Certificate{}, err
	}
	certificate.GeneratedAt, err = parseTime(generatedAt)
	return certificate, err
}

// CheckCertificateEligibility enforces the issuance gates: the event
// must exist, the user must hold a registration for it, and at least the
// wait period must have passed since the event took place.
func (s *Store) CheckCertificateEligibility(ctx context.Context, userID, eventID string) (models.Event, error) {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	registered, err := s.HasRegistration(ctx, userID, eventID)
	if err != nil {
		return models.Event{}, err
	}
	if !registered {
		return models.Event{}, ErrNotRegistered
	}
	if time.Now().Before(event.EventTime.Add(CertificateWaitPeriod)) {
		return models.Event{}, ErrCertificateTooEarly
	}
	return event, nil
}

// CreateCertificate records the issued artifact. Callers must only call
// this after the artifact is durably stored, so a failed render or
// upload can never leave a row behind. When two issuances race, the
// unique index lets exactly one row in; the loser gets the winner's row
// back with created=false and must serve that artifact instead of its
// own.
func (s *Store) CreateCertificate(ctx context.Context, userID, eventID, certificateURL string) (models.Certificate, bool, error) {
	certificate := models.Certificate{
		ID:             uuid.NewString(),
		UserID:         userID,
		EventID:        eventID,
		CertificateURL: certificateURL,
		GeneratedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates (id, user_id, event_id, certificate_url, generated_at)
		VALUES (?, ?, ?, ?, ?)`,
		certificate.ID, userID, eventID, certificateURL, formatTime(certificate.GeneratedAt))
	if isDuplicateKeyErr(err) {
		existing, getErr := s.GetCertificate(ctx, userID, eventID)
		if getErr != nil {
			return models.Certificate{}, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return models.Certificate{}, false, err
	}
	return certificate, true, nil
}
