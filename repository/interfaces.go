// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ShortLinkRepository defines operations for short links
// The code and custom_alias columns form one logical lookup namespace: ByLookupKey and
// LookupKeyTaken match a single string against both columns
type ShortLinkRepository interface {
	Repository[models.ShortLink, models.ShortLinkFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.ShortLink, error)
	ByLookupKey(ctx context.Context, key string) (*models.ShortLink, error)
	LookupKeyTaken(ctx context.Context, key string) (bool, error)
	FirstActiveByOriginalURL(ctx context.Context, originalURL string) (*models.ShortLink, error)
	IncrementClicks(ctx context.Context, id uint) error
	Deactivate(ctx context.Context, id uint) error
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	TotalClicks(ctx context.Context) (int64, error)
	TopDomains(ctx context.Context, limit int) ([]*DomainCount, error)
}

// ClickEventRepository defines operations for click events, including the grouped
// aggregates that back the analytics rollups
type ClickEventRepository interface {
	Repository[models.ClickEvent, models.ClickEventFilter]
	CountByLink(ctx context.Context, shortLinkID uint, since *time.Time) (int64, error)
	DailyClicks(ctx context.Context, shortLinkID uint, since time.Time) ([]*DailyCount, error)
	CountByDeviceType(ctx context.Context, shortLinkID uint, since time.Time) ([]*LabelCount, error)
	TopBrowsers(ctx context.Context, shortLinkID uint, since time.Time, limit int) ([]*LabelCount, error)
	TopCountries(ctx context.Context, shortLinkID uint, since time.Time, limit int) ([]*LabelCount, error)
	ListByLink(ctx context.Context, shortLinkID uint, orderBy string, limit, offset int) ([]*models.ClickEvent, error)
}

// DailyCount is one calendar-day bucket of click counts
type DailyCount struct {
	Day    time.Time `gorm:"column:day"`
	Clicks int64     `gorm:"column:clicks"`
}

// LabelCount is one grouped count keyed by a categorical label (device, browser, country)
type LabelCount struct {
	Label string `gorm:"column:label"`
	Count int64  `gorm:"column:count"`
}

// DomainCount is one grouped count of links per target domain
type DomainCount struct {
	Domain string `gorm:"column:domain"`
	Links  int64  `gorm:"column:links"`
	Clicks int64  `gorm:"column:clicks"`
}
