package domain

import "errors"

// Sentinel errors for the application. Handlers map these to HTTP statuses;
// services return them unwrapped so callers can test with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDatabaseConnection = errors.New("database connection error")

	// Connection lifecycle.
	ErrInvalidTarget    = errors.New("cannot send a connection request to yourself")
	ErrDuplicatePending = errors.New("a pending request already exists between these users")
	ErrAlreadyConnected = errors.New("users are already connected")
	ErrAlreadyResolved  = errors.New("connection request has already been resolved")

	// Messaging.
	ErrNotConnected = errors.New("users are not connected")
	ErrEmptyContent = errors.New("message content cannot be empty")
)
