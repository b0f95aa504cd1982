package storage

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPendingNotFound     = errors.New("no pending registration found")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrNotRegistered       = errors.New("not registered for this event")
	ErrRegistrationClosed  = errors.New("registration has closed for this event")
	ErrMissingIdentity     = errors.New("student id and department are required")
	ErrCertificateTooEarly = errors.New("certificates can be generated only after one week of event completion")
	ErrCertificateNotFound = errors.New("certificate not found")
)
