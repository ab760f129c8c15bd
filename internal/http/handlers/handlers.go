// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate and normalize inputs, delegate
// to application services, and translate results into HTTP responses. The
// anonymous submission endpoint speaks the legacy wire shapes the mobile and
// web clients already depend on; the session-gated endpoints use the standard
// envelope from response.go.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/http/middleware"
	"github.com/kmarinos/go-anonbox-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// MessageService defines message intake and inbox retrieval operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MessageService interface {
	// Send validates raw content, attaches sender attribution, and persists
	// a new message for recipientID.
	Send(ctx context.Context, recipientID, rawContent string, sender clientinfo.Attribution) (*domain.Message, error)
	// ListInbox returns a page of the recipient's messages, newest first,
	// and the total count.
	ListInbox(ctx context.Context, recipientID string, page, pageSize int) ([]domain.Message, int64, error)
	// InboxStats returns the message count and newest creation time for the
	// recipient, used for conditional-request freshness checks.
	InboxStats(ctx context.Context, recipientID string) (int64, *time.Time, error)
}

// ProfileService defines profile lifecycle and lookup operations.
type ProfileService interface {
	// Upsert creates or replaces the profile owned by accountID.
	Upsert(ctx context.Context, accountID, username, displayName string) (*domain.Profile, error)
	// Get returns the profile owned by accountID.
	Get(ctx context.Context, accountID string) (*domain.Profile, error)
	// GetByUsername resolves a public username to its profile.
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for message intake, inboxes, and
// profiles. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	msgSvc     MessageService
	profileSvc ProfileService
}

// New constructs a Handlers instance bound to the given services.
func New(msgSvc MessageService, profileSvc ProfileService) *Handlers {
	return &Handlers{msgSvc: msgSvc, profileSvc: profileSvc}
}

// accountID extracts the authenticated account id placed in the context by
// the session middleware. Empty for anonymous requests.
func accountID(c *gin.Context) string {
	return middleware.AccountID(c)
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses page/page_size query parameters, applying defaults
// and caps.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}
