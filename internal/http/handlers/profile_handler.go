// Profile HTTP handlers.
//
// This file exposes REST endpoints for profile resources:
//   - POST /api/profile             (create or replace the caller's profile)
//   - GET  /api/profile             (caller's own profile)
//   - GET  /api/profiles/{username} (public lookup powering the share link)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/services"
)

//
// DTOs
//

// UpsertProfileRequest is the JSON payload for creating or updating the
// caller's profile.
type UpsertProfileRequest struct {
	// Username is the public handle (1-32 chars of [a-zA-Z0-9_-]).
	Username string `json:"username" binding:"required,min=1" example:"jane_doe"`
	// DisplayName optionally overrides the name shown on the public page;
	// derived from the username when empty.
	DisplayName string `json:"displayName" example:"Jane Doe"`
}

// PublicProfile is the subset of a profile safe to expose to anonymous
// visitors.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func toPublic(p *domain.Profile) PublicProfile {
	return PublicProfile{ID: p.ID, Username: p.Username, DisplayName: p.DisplayName}
}

// UpsertProfile godoc
// @ID          upsertProfile
// @Summary     Create or replace the caller's profile
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpsertProfileRequest  true  "Profile payload"
//
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid username"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing session"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/profile [post]
func (h *Handlers) UpsertProfile(c *gin.Context) {
	ctx := c.Request.Context()

	acct := accountID(c)
	if acct == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username required")
		return
	}

	p, err := h.profileSvc.Upsert(ctx, acct, req.Username, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUsername):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username must be 1-32 characters of letters, digits, '_' or '-'")
		case errors.Is(err, services.ErrMissingAccountID):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to save profile")
		}
		return
	}

	ok(c, http.StatusOK, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get the caller's profile
// @Tags        Profiles
// @Produce     json
//
// @Success     200  {object}  domain.Profile
// @Failure     401  {object}  handlers.ErrorResponse  "Missing session"
// @Failure     404  {object}  handlers.ErrorResponse  "No profile yet"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	acct := accountID(c)
	if acct == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	p, err := h.profileSvc.Get(ctx, acct)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to load profile")
		return
	}

	ok(c, http.StatusOK, p)
}

// GetProfileByUsername godoc
// @ID          getProfileByUsername
// @Summary     Resolve a public username
// @Description Returns the public fields of the profile behind a share link.
// @Tags        Profiles
// @Produce     json
//
// @Param       username  path  string  true  "Public username"
//
// @Success     200  {object}  handlers.PublicProfile
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown username"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/profiles/{username} [get]
func (h *Handlers) GetProfileByUsername(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	p, err := h.profileSvc.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to load profile")
		return
	}

	ok(c, http.StatusOK, toPublic(p))
}
