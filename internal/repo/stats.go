// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
)

// InboxStats returns aggregate metadata for a recipient's inbox: the total
// number of messages and the CreatedAt of the newest one. Messages are
// write-once, so (count, newest created_at) fully identifies the inbox state
// and is cheap to compare for conditional responses.
//
// When the inbox is empty, the returned count is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total messages for recipientID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func InboxStats(ctx context.Context, db *gorm.DB, recipientID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("recipient_id = ?", recipientID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
