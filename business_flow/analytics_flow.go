package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/redis/go-redis/v9"
)

const (
	defaultAnalyticsWindowDays = 30
	maxAnalyticsWindowDays     = 365
	topLabelLimit              = 10
)

// AnalyticsFlow aggregates click events into per-link rollups. Rollups are cached in
// Redis for a few minutes since they back dashboards, not billing.
type AnalyticsFlow interface {
	LinkAnalytics(ctx context.Context, key string, days int) (*dto.LinkAnalyticsResponse, error)
}

type AnalyticsFlowImpl struct {
	shortRepo   repository.ShortLinkRepository
	clickRepo   repository.ClickEventRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

// NewAnalyticsFlow creates a new analytics flow instance. The Redis client may be nil
// when caching is disabled.
func NewAnalyticsFlow(
	shortRepo repository.ShortLinkRepository,
	clickRepo repository.ClickEventRepository,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		shortRepo:   shortRepo,
		clickRepo:   clickRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

func (f *AnalyticsFlowImpl) LinkAnalytics(ctx context.Context, key string, days int) (*dto.LinkAnalyticsResponse, error) {
	if days <= 0 {
		days = defaultAnalyticsWindowDays
	}
	if days > maxAnalyticsWindowDays {
		days = maxAnalyticsWindowDays
	}

	if cached := f.fromCache(ctx, key, days); cached != nil {
		return cached, nil
	}

	row, err := f.shortRepo.ByLookupKey(ctx, key)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if row == nil {
		return nil, ErrLinkNotFound
	}

	since := utils.StartOfDay(utils.UTCNowAdd(-time.Duration(days-1) * 24 * time.Hour))

	windowClicks, err := f.clickRepo.CountByLink(ctx, row.ID, &since)
	if err != nil {
		return nil, NewBusinessError("LINK_ANALYTICS_FAILED", "Failed to count clicks", err)
	}
	daily, err := f.clickRepo.DailyClicks(ctx, row.ID, since)
	if err != nil {
		return nil, NewBusinessError("LINK_ANALYTICS_FAILED", "Failed to bucket daily clicks", err)
	}
	devices, err := f.clickRepo.CountByDeviceType(ctx, row.ID, since)
	if err != nil {
		return nil, NewBusinessError("LINK_ANALYTICS_FAILED", "Failed to group clicks by device", err)
	}
	browsers, err := f.clickRepo.TopBrowsers(ctx, row.ID, since, topLabelLimit)
	if err != nil {
		return nil, NewBusinessError("LINK_ANALYTICS_FAILED", "Failed to rank browsers", err)
	}
	countries, err := f.clickRepo.TopCountries(ctx, row.ID, since, topLabelLimit)
	if err != nil {
		return nil, NewBusinessError("LINK_ANALYTICS_FAILED", "Failed to rank countries", err)
	}

	out := &dto.LinkAnalyticsResponse{
		Message:      "Analytics retrieved",
		Code:         row.Code,
		CustomAlias:  row.CustomAlias,
		WindowDays:   days,
		TotalClicks:  int64(row.ClickCount),
		WindowClicks: windowClicks,
		DailyClicks:  make([]dto.DailyClicksDTO, 0, len(daily)),
		Devices:      make(map[string]int64, len(devices)),
		TopBrowsers:  make([]dto.LabelCountDTO, 0, len(browsers)),
		TopCountries: make([]dto.LabelCountDTO, 0, len(countries)),
	}
	for _, d := range daily {
		out.DailyClicks = append(out.DailyClicks, dto.DailyClicksDTO{
			Day:    d.Day.Format("2006-01-02"),
			Clicks: d.Clicks,
		})
	}
	for _, d := range devices {
		out.Devices[d.Label] = d.Count
	}
	for _, b := range browsers {
		out.TopBrowsers = append(out.TopBrowsers, dto.LabelCountDTO{Label: b.Label, Count: b.Count})
	}
	for _, c := range countries {
		out.TopCountries = append(out.TopCountries, dto.LabelCountDTO{Label: c.Label, Count: c.Count})
	}

	f.toCache(ctx, key, days, out)
	return out, nil
}

func analyticsCacheKey(cfg config.CacheConfig, key string, days int) string {
	return redisKey(cfg, fmt.Sprintf("%s%s:%d", utils.AnalyticsCacheKeyPrefix, key, days))
}

func (f *AnalyticsFlowImpl) fromCache(ctx context.Context, key string, days int) *dto.LinkAnalyticsResponse {
	if f.rc == nil || f.cacheConfig == nil || !f.cacheConfig.Enabled {
		return nil
	}
	bs, err := f.rc.Get(ctx, analyticsCacheKey(*f.cacheConfig, key, days)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}
	var out dto.LinkAnalyticsResponse
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil
	}
	return &out
}

func (f *AnalyticsFlowImpl) toCache(ctx context.Context, key string, days int, resp *dto.LinkAnalyticsResponse) {
	if f.rc == nil || f.cacheConfig == nil || !f.cacheConfig.Enabled {
		return
	}
	bs, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = f.rc.Set(ctx, analyticsCacheKey(*f.cacheConfig, key, days), bs, utils.AnalyticsCacheTTL).Err()
}
