// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Profile model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a profile is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertProfile inserts a profile row for the given account id, or overwrites
// the username and display name when a row with that id already exists. The
// id is externally assigned (auth collaborator) and never generated here.
//
// On success, it returns the persisted Profile. Username uniqueness is
// enforced by the ux_profiles_username index; violations surface as DB errors.
func UpsertProfile(ctx context.Context, db *gorm.DB, id, username, displayName string) (*domain.Profile, error) {
	p := &domain.Profile{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return nil, err
	}
	return GetProfile(ctx, db, id)
}

// GetProfile fetches a profile by its account id. If the record does not
// exist, it returns ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, id string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByUsername fetches a profile by its public username. If the
// record does not exist, it returns ErrNotFound.
func GetProfileByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("username = ?", username).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
