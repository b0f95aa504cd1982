package models

import "time"

// PendingUser holds a signup waiting for email OTP verification.
// One row per email; re-signup replaces the row.
type PendingUser struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Password     string    `json:"-"`
	ProfileImage string    `json:"profile_image,omitempty"`
	OTP          string    `json:"-"`
	OTPExpiry    time.Time `json:"-"`
}
