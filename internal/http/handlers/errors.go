// Package handlers defines the HTTP-layer error codes used across endpoints.
//
// The codes form a stable, machine-readable taxonomy that supplements the
// human-readable messages. Generic codes mirror common HTTP status semantics;
// the domain-specific ones mark business failures that a status alone cannot
// convey.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Every error response includes both an HTTP status and one of these codes.
//   - Handlers pick the most specific matching code and pass it to fail().

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeFetchFailed      = "fetch_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
