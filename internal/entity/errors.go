package entity

import "errors"

var (
	// Identity errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")

	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrEventFull     = errors.New("event full")

	// Registration errors
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
