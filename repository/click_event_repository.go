package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// ClickEventRepositoryImpl implements ClickEventRepository
type ClickEventRepositoryImpl struct {
	*BaseRepository[models.ClickEvent, models.ClickEventFilter]
}

func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &ClickEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickEvent, models.ClickEventFilter](db)}
}

func (r *ClickEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickEventFilter) *gorm.DB {
	if f.ShortLinkID != nil {
		db = db.Where("short_link_id = ?", *f.ShortLinkID)
	}
	if f.Country != nil {
		db = db.Where("country = ?", *f.Country)
	}
	if f.DeviceType != nil {
		db = db.Where("device_type = ?", *f.DeviceType)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ClickEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClickEventRepositoryImpl) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ClickEventRepositoryImpl) CountByLink(ctx context.Context, shortLinkID uint, since *time.Time) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ClickEvent{}).Where("short_link_id = ?", shortLinkID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for link %d: %w", shortLinkID, err)
	}
	return count, nil
}

// DailyClicks buckets clicks by calendar day (UTC) from since until now
func (r *ClickEventRepositoryImpl) DailyClicks(ctx context.Context, shortLinkID uint, since time.Time) ([]*DailyCount, error) {
	db := r.getDB(ctx)
	var rows []*DailyCount
	err := db.Model(&models.ClickEvent{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS clicks").
		Where("short_link_id = ? AND created_at >= ?", shortLinkID, since).
		Group("day").
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to bucket daily clicks for link %d: %w", shortLinkID, err)
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) CountByDeviceType(ctx context.Context, shortLinkID uint, since time.Time) ([]*LabelCount, error) {
	db := r.getDB(ctx)
	var rows []*LabelCount
	err := db.Model(&models.ClickEvent{}).
		Select("device_type AS label, COUNT(*) AS count").
		Where("short_link_id = ? AND created_at >= ?", shortLinkID, since).
		Group("device_type").
		Order("count DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by device for link %d: %w", shortLinkID, err)
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) TopBrowsers(ctx context.Context, shortLinkID uint, since time.Time, limit int) ([]*LabelCount, error) {
	return r.topLabel(ctx, "browser", shortLinkID, since, limit)
}

func (r *ClickEventRepositoryImpl) TopCountries(ctx context.Context, shortLinkID uint, since time.Time, limit int) ([]*LabelCount, error) {
	return r.topLabel(ctx, "country", shortLinkID, since, limit)
}

// topLabel is shared by the browser and country rollups: grouped counts excluding empty
// labels, highest first. column is always one of the fixed column names above, never
// user input.
func (r *ClickEventRepositoryImpl) topLabel(ctx context.Context, column string, shortLinkID uint, since time.Time, limit int) ([]*LabelCount, error) {
	db := r.getDB(ctx)
	var rows []*LabelCount
	err := db.Model(&models.ClickEvent{}).
		Select(fmt.Sprintf("%s AS label, COUNT(*) AS count", column)).
		Where(fmt.Sprintf("short_link_id = ? AND created_at >= ? AND %s <> ''", column), shortLinkID, since).
		Group(column).
		Order("count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by %s for link %d: %w", column, shortLinkID, err)
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) ListByLink(ctx context.Context, shortLinkID uint, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	filter := models.ClickEventFilter{ShortLinkID: &shortLinkID}
	return r.ByFilter(ctx, filter, orderBy, limit, offset)
}
