package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/validation"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:msgsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

const recipient = "550e8400-e29b-41d4-a716-446655440000"

func seedRecipient(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Create(&domain.Profile{ID: recipient, Username: "nia", DisplayName: "Nia"}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func fullAttr() clientinfo.Attribution {
	return clientinfo.Attribution{IP: "203.0.113.5", UserAgent: "curl/8.0", Location: "US"}
}

// ---------- Send() ----------

func TestMessageService_Send_PersistsSanitizedContent(t *testing.T) {
	db := newSvcDB(t, &domain.Profile{}, &domain.Message{})
	seedRecipient(t, db)
	s := &MessageService{DB: db}

	m, err := s.Send(context.Background(), recipient, "  Hello!\x00  ", fullAttr())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.Content != "Hello!" {
		t.Fatalf("content = %q; want sanitized %q", m.Content, "Hello!")
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Fatalf("persisted record incomplete: %+v", m)
	}
	if m.SenderIP != "203.0.113.5" || m.SenderUserAgent != "curl/8.0" || m.SenderLocation != "US" {
		t.Fatalf("attribution not stored: %+v", m)
	}

	var n int64
	if err := db.Model(&domain.Message{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("expected exactly one insert, got %d (%v)", n, err)
	}
}

func TestMessageService_Send_ValidationErrors(t *testing.T) {
	db := newSvcDB(t, &domain.Profile{}, &domain.Message{})
	seedRecipient(t, db)
	s := &MessageService{DB: db}
	ctx := context.Background()

	cases := []struct {
		name      string
		recipient string
		content   string
		want      error
	}{
		{"missing recipient", "", "hi", validation.ErrMissingRecipient},
		{"malformed recipient", "nope", "hi", validation.ErrMalformedRecipient},
		{"empty content", recipient, "   ", validation.ErrEmptyContent},
		{"too long", recipient, strings.Repeat("x", validation.MaxContentRunes+1), validation.ErrTooLong},
		{"suspicious escapes", recipient, `payload \u0041`, validation.ErrSuspiciousEscapes},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Send(ctx, tc.recipient, tc.content, fullAttr()); err != tc.want {
				t.Fatalf("Send = %v; want %v", err, tc.want)
			}
		})
	}

	// No validation failure may leave a row behind.
	var n int64
	if err := db.Model(&domain.Message{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("expected zero inserts after failures, got %d (%v)", n, err)
	}
}

func TestMessageService_Send_BlankAttributionDegradesToUnknown(t *testing.T) {
	db := newSvcDB(t, &domain.Profile{}, &domain.Message{})
	seedRecipient(t, db)
	s := &MessageService{DB: db}

	m, err := s.Send(context.Background(), recipient, "hey", clientinfo.Attribution{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.SenderIP != "unknown" || m.SenderUserAgent != "unknown" || m.SenderLocation != "unknown" {
		t.Fatalf("blank attribution should store unknown, got %+v", m)
	}
}

func TestMessageService_Send_PersistenceFailureSurfaces(t *testing.T) {
	// No migration: the insert must fail and the raw error must be returned.
	db := newSvcDB(t)
	s := &MessageService{DB: db}

	_, err := s.Send(context.Background(), recipient, "hello", fullAttr())
	if err == nil {
		t.Fatalf("expected persistence error on missing table")
	}
	// Persistence failures must not masquerade as validation failures.
	switch err {
	case validation.ErrEmptyContent, validation.ErrTooLong, validation.ErrSuspiciousEscapes,
		validation.ErrMissingRecipient, validation.ErrMalformedRecipient:
		t.Fatalf("persistence failure mapped to validation error: %v", err)
	}
}

// ---------- ListInbox() ----------

func TestMessageService_ListInbox_NewestFirstAndPaged(t *testing.T) {
	db := newSvcDB(t, &domain.Profile{}, &domain.Message{})
	seedRecipient(t, db)
	s := &MessageService{DB: db}
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		if err := db.Create(&domain.Message{
			ID:              uuid.NewString(),
			RecipientID:     recipient,
			Content:         fmt.Sprintf("m%d", i),
			SenderIP:        "unknown",
			SenderUserAgent: "unknown",
			SenderLocation:  "unknown",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, total, err := s.ListInbox(ctx, recipient, 1, 2)
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(items))
	}
	if items[0].Content != "m4" || items[1].Content != "m3" {
		t.Fatalf("not newest-first: %q, %q", items[0].Content, items[1].Content)
	}

	// Defaults are applied for nonsense paging values.
	items, total, err = s.ListInbox(ctx, recipient, -1, 0)
	if err != nil || total != 5 || len(items) != 5 {
		t.Fatalf("default paging: total=%d len=%d err=%v", total, len(items), err)
	}
}

func TestMessageService_ListInbox_EmptyVsError(t *testing.T) {
	db := newSvcDB(t, &domain.Profile{}, &domain.Message{})
	seedRecipient(t, db)
	s := &MessageService{DB: db}

	items, total, err := s.ListInbox(context.Background(), recipient, 1, 20)
	if err != nil {
		t.Fatalf("empty inbox must not error: %v", err)
	}
	if total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty inbox: total=%d items=%v", total, items)
	}

	// A broken store must surface as an error, never as an empty inbox.
	bare := newSvcDB(t)
	s2 := &MessageService{DB: bare}
	if _, _, err := s2.ListInbox(context.Background(), recipient, 1, 20); err == nil {
		t.Fatalf("expected fetch error on missing table")
	}
}
