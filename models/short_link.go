// Package models contains the database entities and filter types for the service
package models

import (
	"time"

	"github.com/google/uuid"
)

// ShortLink represents one shortening mapping from a code (or custom alias) to a target URL
// Code is always system-generated; CustomAlias is optional and user-chosen
// Code and CustomAlias share one uniqueness namespace: a lookup key matches either column
// ClickCount is only ever advanced by the click recorder via an atomic UPDATE
// Rows are never deleted; "deletion" flips IsActive to false and the code/alias slot
// stays reserved forever
type ShortLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_short_links_uuid" json:"uuid"`
	OriginalURL string    `gorm:"type:text;not null;index:idx_short_links_original_url" json:"original_url"`
	Code        string    `gorm:"size:10;not null;uniqueIndex:uk_short_links_code" json:"code"`
	CustomAlias *string   `gorm:"size:50;uniqueIndex:uk_short_links_custom_alias" json:"custom_alias,omitempty"`
	Domain      string    `gorm:"size:100;index:idx_short_links_domain" json:"domain"`
	ClickCount  uint64    `gorm:"not null;default:0" json:"click_count"`
	IsActive    bool      `gorm:"not null;default:true;index:idx_short_links_is_active" json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_short_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ShortLink
func (ShortLink) TableName() string { return "short_links" }

// LookupKey returns the string clients use in redirect URLs: the alias when set, else the code
func (s *ShortLink) LookupKey() string {
	if s.CustomAlias != nil && *s.CustomAlias != "" {
		return *s.CustomAlias
	}
	return s.Code
}

// IsExpired reports whether the link has an expiry in the past (derived, not stored)
func (s *ShortLink) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// ShortLinkFilter provides filter fields for repository queries
type ShortLinkFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Code          *string
	CustomAlias   *string
	Domain        *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
