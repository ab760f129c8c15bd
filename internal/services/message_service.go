// Package services – MessageService
//
// This file implements MessageService, the application-level component that
// owns anonymous message intake and the recipient's inbox read path. Intake
// runs the full pipeline over explicit inputs: validate the recipient id and
// raw content, sanitize, attach the pre-resolved sender attribution, and
// persist the record as a single atomic insert. No retries are performed;
// the store surfaces a definitive success or failure per call.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// recipient identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/repo"
	"github.com/kmarinos/go-anonbox-backend/internal/validation"
)

// MessageService coordinates message intake and inbox reads.
type MessageService struct {
	DB *gorm.DB
}

// Send validates and sanitizes an anonymous submission and persists it for
// recipientID with the given sender attribution.
//
// Validation failures are returned as the tagged sentinel errors from the
// validation package so the caller can map each kind to a user-facing phrase.
// Persistence failures are returned raw; callers must log them server-side
// and never leak store error text to the anonymous sender. On success exactly
// one row has been inserted and the persisted record is returned.
func (s *MessageService) Send(ctx context.Context, recipientID, rawContent string, sender clientinfo.Attribution) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("recipient.id", recipientID),
		),
	)
	defer span.End()

	if err := validation.ValidateRecipientID(recipientID); err != nil {
		return nil, err
	}
	// Content is validated on the raw text: the escape heuristic inspects
	// signals that sanitization would strip.
	if err := validation.ValidateMessageContent(rawContent); err != nil {
		return nil, err
	}
	content := validation.Sanitize(rawContent)

	// Attribution is advisory; blanks degrade to "unknown" rather than block
	// delivery.
	if sender.IP == "" {
		sender.IP = clientinfo.Unknown
	}
	if sender.UserAgent == "" {
		sender.UserAgent = clientinfo.Unknown
	}
	if sender.Location == "" {
		sender.Location = clientinfo.Unknown
	}

	return repo.CreateMessage(ctx, s.DB, recipientID, content, sender.IP, sender.UserAgent, sender.Location)
}

// ListInbox returns a page of recipientID's messages ordered newest first,
// together with the total message count.
//
// Unlike Send, read failures are surfaced to the caller: the dashboard must
// be able to distinguish "no messages" from "failed to load".
func (s *MessageService) ListInbox(ctx context.Context, recipientID string, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListInbox",
		trace.WithAttributes(
			attribute.String("recipient.id", recipientID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(s.DB.WithContext(ctx), recipientID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(s.DB.WithContext(ctx), recipientID, offset, pageSize)
	return items, total, err
}

// InboxStats reports the recipient's message count and newest creation time.
// Messages are write-once, so the pair is a sound freshness key for
// conditional inbox requests.
func (s *MessageService) InboxStats(ctx context.Context, recipientID string) (int64, *time.Time, error) {
	return repo.InboxStats(ctx, s.DB, recipientID)
}
