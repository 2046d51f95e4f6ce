package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrLookupIntegrity is returned when a lookup key matches more than one active row,
// which the unique indexes on code and custom_alias should make impossible
var ErrLookupIntegrity = errors.New("lookup key matched multiple active short links")

// ShortLinkRepositoryImpl implements ShortLinkRepository
type ShortLinkRepositoryImpl struct {
	*BaseRepository[models.ShortLink, models.ShortLinkFilter]
}

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &ShortLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.ShortLink, models.ShortLinkFilter](db)}
}

func (r *ShortLinkRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.ShortLink, error) {
	filter := models.ShortLinkFilter{UUID: &id}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByLookupKey resolves a redirect key against both the code and custom_alias columns in
// a single query, restricted to active rows. Zero matches is (nil, nil); more than one
// match is a data-integrity violation.
func (r *ShortLinkRepositoryImpl) ByLookupKey(ctx context.Context, key string) (*models.ShortLink, error) {
	db := r.getDB(ctx)
	var rows []*models.ShortLink
	err := db.Model(&models.ShortLink{}).
		Where("(code = ? OR custom_alias = ?) AND is_active = ?", key, key, true).
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lookup key %q: %w", key, err)
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%w: key %q", ErrLookupIntegrity, key)
	}
}

// LookupKeyTaken checks the combined code/alias namespace across ALL rows, active or
// not: inactive links keep their slot permanently reserved.
func (r *ShortLinkRepositoryImpl) LookupKeyTaken(ctx context.Context, key string) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ShortLink{}).
		Where("code = ? OR custom_alias = ?", key, key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check lookup key %q: %w", key, err)
	}
	return count > 0, nil
}

// FirstActiveByOriginalURL finds an existing active, alias-less link for the same
// normalized URL so alias-less creates can be deduplicated.
func (r *ShortLinkRepositoryImpl) FirstActiveByOriginalURL(ctx context.Context, originalURL string) (*models.ShortLink, error) {
	db := r.getDB(ctx)
	var row models.ShortLink
	err := db.Where("original_url = ? AND is_active = ? AND custom_alias IS NULL", originalURL, true).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find link by original URL: %w", err)
	}
	return &row, nil
}

// IncrementClicks advances the aggregate counter with a single atomic UPDATE. Never
// load-then-store: concurrent redirects of the same link must not lose updates.
func (r *ShortLinkRepositoryImpl) IncrementClicks(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.ShortLink{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"click_count": gorm.Expr("click_count + 1"),
			"updated_at":  utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment clicks for link %d: %w", id, res.Error)
	}
	return nil
}

func (r *ShortLinkRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.ShortLink{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate link %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ShortLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.ShortLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Code != nil {
		db = db.Where("code = ?", *f.Code)
	}
	if f.CustomAlias != nil {
		db = db.Where("custom_alias = ?", *f.CustomAlias)
	}
	if f.Domain != nil {
		db = db.Where("domain = ?", *f.Domain)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ShortLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.ShortLinkFilter, orderBy string, limit, offset int) ([]*models.ShortLink, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShortLink{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ShortLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ShortLinkRepositoryImpl) Count(ctx context.Context, filter models.ShortLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShortLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ShortLinkRepositoryImpl) Exists(ctx context.Context, filter models.ShortLinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ShortLinkRepositoryImpl) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ShortLink{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count links created since %s: %w", since, err)
	}
	return count, nil
}

func (r *ShortLinkRepositoryImpl) TotalClicks(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)
	var total int64
	err := db.Model(&models.ShortLink{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(click_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum click counts: %w", err)
	}
	return total, nil
}

func (r *ShortLinkRepositoryImpl) TopDomains(ctx context.Context, limit int) ([]*DomainCount, error) {
	db := r.getDB(ctx)
	var rows []*DomainCount
	err := db.Model(&models.ShortLink{}).
		Select("domain, COUNT(*) AS links, COALESCE(SUM(click_count), 0) AS clicks").
		Where("is_active = ? AND domain <> ''", true).
		Group("domain").
		Order("links DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top domains: %w", err)
	}
	return rows, nil
}
