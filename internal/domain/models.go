// Package domain defines the persistence models for profiles and anonymous
// messages. These types are mapped with GORM and form the core data layer
// of the anonymous-messaging application.
package domain

import (
	"time"
)

// Profile represents a recipient account that can receive anonymous messages.
// The profile ID is assigned by the authentication collaborator and reused as
// the primary key here, so creating a profile again for the same account
// overwrites the previous row (upsert semantics).
//
// Fields:
//   - ID: stable UUID primary key (char(36)), owned by the auth layer.
//   - Username: unique, human-chosen slug used in public share links.
//   - DisplayName: label shown on the public page; defaults to a title-cased
//     form of the username when left empty.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Profile struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Username    string    `json:"username"     gorm:"type:varchar(32);not null;uniqueIndex:ux_profiles_username"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Message represents a single anonymous submission addressed to a profile.
// Messages are write-once: no update or delete path exists, and CreatedAt is
// the sole ordering key for inbox display (descending).
//
// The sender_* columns hold best-effort attribution derived from proxy headers
// at intake time. They are advisory only (any of them may be the literal
// "unknown") and must never be treated as sender identity or gate
// authorization decisions.
//
// Fields:
//   - ID: UUID primary key (char(36)), generated at persistence time.
//   - RecipientID: foreign key to the receiving profile (indexed).
//   - Content: sanitized text, 1–1000 characters.
//   - SenderIP / SenderUserAgent / SenderLocation: attribution strings.
//   - CreatedAt: server-assigned UTC timestamp.
//   - Recipient: FK association, ensures cascade delete/update.
type Message struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	RecipientID     string    `json:"recipient_id"      gorm:"type:char(36);not null;index:idx_recipient_msgs,priority:1"`
	Content         string    `json:"content"           gorm:"type:text;not null"`
	SenderIP        string    `json:"sender_ip"         gorm:"type:varchar(64);not null;default:'unknown'"`
	SenderUserAgent string    `json:"sender_user_agent" gorm:"type:text;not null;default:'unknown'"`
	SenderLocation  string    `json:"sender_location"   gorm:"type:varchar(64);not null;default:'unknown'"`
	CreatedAt       time.Time `json:"created_at"        gorm:"index:idx_recipient_msgs,priority:2"`

	// Recipient is the profile this message was sent to. Messages are
	// cascade-deleted if the profile row is removed.
	Recipient Profile `json:"-" gorm:"foreignKey:RecipientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
