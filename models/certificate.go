package models

import "time"

type Certificate struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	EventID        string    `json:"event_id"`
	CertificateURL string    `json:"certificate_url"`
	GeneratedAt    time.Time `json:"generated_at"`
}
