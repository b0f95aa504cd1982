package models

import "time"

type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	StudentID    string    `json:"student_id"`
	Department   string    `json:"department"`
	RegisteredAt time.Time `json:"registered_at"`

	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// DashboardEvent is one row of a user's "my registrations" view.
type DashboardEvent struct {
	RegistrationID string    `json:"registration_id"`
	StudentID      string    `json:"student_id"`
	Department     string    `json:"department"`
	RegisteredAt   time.Time `json:"registered_at"`

	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventLocation string    `json:"event_location"`
	EventTime     time.Time `json:"event_time"`
	EventImage    string    `json:"event_image,omitempty"`
}
