// Package services defines the business logic for profiles and anonymous
// message intake. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrProfileNotFound indicates that the requested profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidUsername is returned when a username fails the slug rules
	// (allowed characters, length).
	ErrInvalidUsername = errors.New("username must be 1-32 characters of letters, digits, underscore or hyphen")

	// ErrMissingAccountID is returned when a profile operation is attempted
	// without an authenticated account id.
	ErrMissingAccountID = errors.New("account id is required")
)
