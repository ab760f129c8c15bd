// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities shared by the
// session-gated endpoints. The anonymous submission endpoint keeps its own
// legacy shapes (see message_handler.go) because deployed clients parse them.
//
// Conventions:
//   - Error responses carry an ErrorResponse with a stable `code`.
//   - fail() centralizes formatting and ensures 5xx responses are logged
//     with request context.
//   - ok() keeps success responses uniform across handlers.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "profile not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope for session-gated endpoints.
//
// RequestID echoes the X-Request-ID header so client-side errors can be
// correlated with server logs. Code is a stable machine-readable string (see
// errors.go); Message is safe to show to users.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"profile not found"`
}

// fail aborts the request with a structured error. Server-side errors
// (>= 500) are logged with the request-scoped logger before the response is
// written.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), for router-level fallbacks
// (NoRoute, NoMethod) that live outside this package.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
