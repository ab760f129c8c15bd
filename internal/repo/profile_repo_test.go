package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
)

func newProfileRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("profile_repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Profile{}, &domain.Message{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

const accountID = "770e8400-e29b-41d4-a716-446655440000"

func TestUpsertProfile_CreateThenOverwrite(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	p, err := UpsertProfile(ctx, db, accountID, "krista", "Krista")
	if err != nil {
		t.Fatalf("UpsertProfile create: %v", err)
	}
	if p.ID != accountID || p.Username != "krista" {
		t.Fatalf("created row mismatch: %+v", p)
	}

	// Same id again overwrites, never duplicates.
	p2, err := UpsertProfile(ctx, db, accountID, "krista_k", "Krista K")
	if err != nil {
		t.Fatalf("UpsertProfile overwrite: %v", err)
	}
	if p2.Username != "krista_k" || p2.DisplayName != "Krista K" {
		t.Fatalf("overwrite not applied: %+v", p2)
	}

	var n int64
	if err := db.Model(&domain.Profile{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one profile row, got %d", n)
	}
}

func TestUpsertProfile_DuplicateUsernameFails(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	if _, err := UpsertProfile(ctx, db, accountID, "taken", "Taken"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	const otherID = "880e8400-e29b-41d4-a716-446655440000"
	if _, err := UpsertProfile(ctx, db, otherID, "taken", "Other"); err == nil {
		t.Fatalf("expected unique-username violation")
	}
}

func TestGetProfile_AndByUsername(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	if _, err := UpsertProfile(ctx, db, accountID, "finder", "Finder"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	byID, err := GetProfile(ctx, db, accountID)
	if err != nil || byID.Username != "finder" {
		t.Fatalf("GetProfile = %+v, %v", byID, err)
	}

	byName, err := GetProfileByUsername(ctx, db, "finder")
	if err != nil || byName.ID != accountID {
		t.Fatalf("GetProfileByUsername = %+v, %v", byName, err)
	}

	if _, err := GetProfile(ctx, db, "990e8400-e29b-41d4-a716-446655440000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: got %v; want ErrNotFound", err)
	}
	if _, err := GetProfileByUsername(ctx, db, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing username: got %v; want ErrNotFound", err)
	}
}
