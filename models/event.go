package models

import "time"

var EventCategories = []string{"Tech", "Cultural", "Sports", "Workshop", "Other"}

func IsValidCategory(category string) bool {
	for _, c := range EventCategories {
		if category == c {
			return true
		}
	}
	return false
}

type Event struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Image                string     `json:"image"`
	Location             string     `json:"location"`
	Category             string     `json:"category"`
	OrganizingClub       string     `json:"organizing_club"`
	CreatedBy            string     `json:"created_by"`
	EventTime            time.Time  `json:"event_time"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	ParticipantsCount    int        `json:"participants_count"`
	ViewsCount           int        `json:"views_count"`
	RegistrationOpen     bool       `json:"registration_open"`
	CreatedAt            string     `json:"created_at,omitempty"`
	UpdatedAt            string     `json:"updated_at,omitempty"`

	CreatorUsername string `json:"creator_username,omitempty"`
	CreatorEmail    string `json:"creator_email,omitempty"`
}

// EffectiveDeadline is the single place the registration cutoff is
// computed: the explicit deadline when set, otherwise one hour before
// the event starts.
func (e *Event) EffectiveDeadline() time.Time {
	if e.RegistrationDeadline != nil {
		return *e.RegistrationDeadline
	}
	return e.EventTime.Add(-time.Hour)
}
