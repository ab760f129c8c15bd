// Inbox read path.
//
// This file exposes the recipient-facing endpoint:
//   - GET /api/messages   (caller's inbox, newest first, paginated, ETag)
//
// Each item carries a sender_hint derived from the stored user-agent so the
// dashboard can show "probably an iPhone" without ever exposing an identity.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
	"github.com/kmarinos/go-anonbox-backend/internal/domain"
)

//
// DTOs
//

// InboxMessage is a stored message decorated with its display-only sender
// hint.
type InboxMessage struct {
	domain.Message
	SenderHint clientinfo.SenderHint `json:"sender_hint"`
}

// ListInboxResponse contains a page of inbox messages and pagination
// metadata.
type ListInboxResponse struct {
	Messages   []InboxMessage `json:"messages"`
	Pagination Pagination     `json:"pagination"`
}

// ListInbox godoc
// @ID          listInbox
// @Summary     List the caller's inbox
// @Description Returns the authenticated profile's messages, newest first.
// @Description Supports conditional requests via ETag/If-None-Match.
// @Tags        Inbox
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListInboxResponse
// @Success     304  "Not modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing session"
// @Failure     500  {object}  handlers.ErrorResponse  "Fetch failure"
// @Router      /api/messages [get]
func (h *Handlers) ListInbox(c *gin.Context) {
	ctx := c.Request.Context()

	acct := accountID(c)
	if acct == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	// Conditional request pre-check, best effort. Messages are write-once so
	// (count, newest created_at) fully identifies the inbox state.
	if count, newest, err := h.msgSvc.InboxStats(ctx, acct); err == nil {
		var ts int64
		if newest != nil {
			ts = newest.Unix()
		}
		etag := fmt.Sprintf(`W/"inbox:%s:%d:%d"`, acct, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	page, pageSize := clampPagination(c)

	items, total, err := h.msgSvc.ListInbox(ctx, acct, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeFetchFailed, "failed to load messages")
		return
	}

	decorated := make([]InboxMessage, 0, len(items))
	for _, m := range items {
		decorated = append(decorated, InboxMessage{
			Message:    m,
			SenderHint: clientinfo.ParseUserAgent(m.SenderUserAgent),
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListInboxResponse{
		Messages: decorated,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
