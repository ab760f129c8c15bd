// Package services – ProfileService
//
// This file implements the ProfileService, which manages recipient profiles.
// It validates and normalizes usernames, derives a default display name when
// none is supplied, and coordinates repository operations for upserting and
// looking up profiles. The profile id comes from the auth collaborator and is
// never generated here; upserting twice with the same id overwrites.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/repo"
)

// usernameRE matches the slug characters allowed in public share links.
var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxUsernameRunes = 32

// ProfileService provides profile-level operations: upserting the caller's
// profile and resolving profiles for public pages.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// DisplayNameLocale selects the casing rules used when deriving a
	// display name from the username. English when unset.
	DisplayNameLocale language.Tag
}

// Upsert creates or overwrites the profile for accountID. The username must
// be a valid slug; when displayName is blank a title-cased form of the
// username is used ("jane_doe" → "Jane_Doe").
func (s *ProfileService) Upsert(ctx context.Context, accountID, username, displayName string) (*domain.Profile, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrMissingAccountID
	}
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameRunes || !usernameRE.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = cases.Title(s.localeOrDefault()).String(username)
	}

	return repo.UpsertProfile(ctx, s.DB, accountID, username, displayName)
}

// Get returns the profile for accountID, or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, accountID string) (*domain.Profile, error) {
	p, err := repo.GetProfile(ctx, s.DB, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// GetByUsername returns the profile behind a public share link, or
// ErrProfileNotFound.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	p, err := repo.GetProfileByUsername(ctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *ProfileService) localeOrDefault() language.Tag {
	if s.DisplayNameLocale == language.Und {
		return language.English
	}
	return s.DisplayNameLocale
}
