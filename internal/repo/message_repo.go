// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
)

// CreateMessage inserts a new message row and returns the persisted record.
// The id and created_at are assigned here, as a single atomic insert; callers
// get back exactly what was stored (insert-returning semantics).
func CreateMessage(ctx context.Context, db *gorm.DB, recipientID, content, senderIP, senderUA, senderLocation string) (*domain.Message, error) {
	m := &domain.Message{
		ID:              uuid.NewString(),
		RecipientID:     recipientID,
		Content:         content,
		SenderIP:        senderIP,
		SenderUserAgent: senderUA,
		SenderLocation:  senderLocation,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessagesForRecipient returns messages addressed to recipientID ordered
// newest first (CreatedAt DESC, ID DESC as a deterministic tiebreak).
func ListMessagesForRecipient(ctx context.Context, db *gorm.DB, recipientID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error (as tests expect).
func CountMessages(db *gorm.DB, recipientID string) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE recipient_id = ?", recipientID).Scan(&total).Error
	return total, err
}

// ListMessagesPage returns a paginated slice ordered (CreatedAt DESC, ID DESC).
func ListMessagesPage(db *gorm.DB, recipientID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
