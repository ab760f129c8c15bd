// Anonymous message intake.
//
// This file exposes the public submission endpoint:
//   - POST /api/send-message
//
// The endpoint is the one surface anonymous visitors touch, so it keeps the
// wire shapes the deployed clients parse: a flat {"error": "..."} object for
// failures and {message, data, success} on success, distinct from the
// standard envelope used by the session-gated API.
//
// Intake walks a fixed pipeline: content-type check, raw body parse,
// recipient and content validation, sender attribution, persistence. The
// first failing step wins. Store errors are logged server-side and reported
// to the sender only as a generic failure.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/http/middleware"
	"github.com/kmarinos/go-anonbox-backend/internal/validation"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for submitting an anonymous message.
type SendMessageRequest struct {
	// RecipientID is the target profile id (UUID).
	RecipientID string `json:"recipientId" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Content is the message text. At most 1000 characters after sanitization.
	Content string `json:"content" example:"you dropped this, king 👑"`
}

// SendMessageResponse is the success envelope for the submission endpoint.
type SendMessageResponse struct {
	Message string          `json:"message" example:"Message sent successfully"`
	Data    *domain.Message `json:"data"`
	Success bool            `json:"success" example:"true"`
}

// SendMessageError is the failure shape for the submission endpoint.
type SendMessageError struct {
	Error string `json:"error" example:"Message cannot be empty"`
}

// sendFail writes the submission endpoint's flat error shape.
func sendFail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, SendMessageError{Error: msg})
}

// isJSONMediaType accepts application/json and +json suffixed types.
func isJSONMediaType(ct string) bool {
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// validationMessage maps a validation sentinel to its user-facing phrase.
// The empty string means the error is not a validation failure.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, validation.ErrMissingRecipient):
		return "Recipient ID is required"
	case errors.Is(err, validation.ErrMalformedRecipient):
		return "Invalid recipient ID format"
	case errors.Is(err, validation.ErrEmptyContent):
		return "Message cannot be empty"
	case errors.Is(err, validation.ErrTooLong):
		return "Message is too long (max 1000 characters)"
	case errors.Is(err, validation.ErrSuspiciousEscapes):
		return "Message contains invalid characters"
	}
	return ""
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Submit an anonymous message
// @Description Validates and persists an anonymous message for the recipient profile.
// @Description Sender attribution (ip, user-agent, locale) is derived from the request.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SendMessageRequest  true  "Message payload"
//
// @Success     200  {object}  handlers.SendMessageResponse  "Message persisted"
// @Failure     400  {object}  handlers.SendMessageError     "Invalid payload or content"
// @Failure     500  {object}  handlers.SendMessageError     "Persistence failure"
// @Router      /api/send-message [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()

	if !isJSONMediaType(c.ContentType()) {
		sendFail(c, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		sendFail(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(raw) == 0 {
		sendFail(c, http.StatusBadRequest, "Empty request body")
		return
	}

	var req SendMessageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		sendFail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.RecipientID == "" && req.Content == "" {
		sendFail(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	sender := clientinfo.Resolve(c.Request.Header, c.Request.RemoteAddr)

	m, err := h.msgSvc.Send(ctx, req.RecipientID, req.Content, sender)
	if err != nil {
		if msg := validationMessage(err); msg != "" {
			sendFail(c, http.StatusBadRequest, msg)
			return
		}
		// Store failure: log the cause, hand the sender a generic phrase.
		middleware.LoggerFrom(c).Error().
			Err(err).
			Str("recipient_id", req.RecipientID).
			Msg("message intake failed")
		sendFail(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	ok(c, http.StatusOK, SendMessageResponse{
		Message: "Message sent successfully",
		Data:    m,
		Success: true,
	})
}
