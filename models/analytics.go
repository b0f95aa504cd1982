package models

import "time"

type TopAttendedEvent struct {
	EventID            string    `json:"event_id"`
	Title              string    `json:"title"`
	Image              string    `json:"image,omitempty"`
	EventTime          time.Time `json:"event_time"`
	TotalRegistrations int       `json:"total_registrations"`
}
