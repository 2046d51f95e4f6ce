package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/redis/go-redis/v9"
)

// ResolvedLink is the cached view of an active short link, just enough to redirect and
// to attribute the click
type ResolvedLink struct {
	ID          uint       `json:"id"`
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// VisitFlow resolves a short link and tracks a click
// Returns the target URL to redirect
// Public flow, no authentication required
type VisitFlow interface {
	Resolve(ctx context.Context, key string) (*ResolvedLink, error)
	Visit(ctx context.Context, key string, metadata *ClientMetadata) (string, error)
}

type VisitFlowImpl struct {
	shortRepo   repository.ShortLinkRepository
	recorder    ClickRecorder
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

// NewVisitFlow creates a new visit flow instance. The Redis client may be nil when
// caching is disabled.
func NewVisitFlow(
	shortRepo repository.ShortLinkRepository,
	recorder ClickRecorder,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
) VisitFlow {
	return &VisitFlowImpl{
		shortRepo:   shortRepo,
		recorder:    recorder,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

func (f *VisitFlowImpl) Resolve(ctx context.Context, key string) (*ResolvedLink, error) {
	if cached := f.fromCache(ctx, key); cached != nil {
		if utils.IsExpiredPtr(cached.ExpiresAt) {
			return nil, ErrLinkExpired
		}
		return cached, nil
	}

	row, err := f.shortRepo.ByLookupKey(ctx, key)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if row == nil {
		return nil, ErrLinkNotFound
	}
	if row.IsExpired(utils.UTCNow()) {
		return nil, ErrLinkExpired
	}

	resolved := &ResolvedLink{
		ID:          row.ID,
		OriginalURL: row.OriginalURL,
		ExpiresAt:   row.ExpiresAt,
	}
	f.toCache(ctx, key, resolved)
	return resolved, nil
}

func (f *VisitFlowImpl) Visit(ctx context.Context, key string, metadata *ClientMetadata) (string, error) {
	resolved, err := f.Resolve(ctx, key)
	if err != nil {
		return "", err
	}

	click := Click{ShortLinkID: resolved.ID}
	if metadata != nil {
		click.IPAddress = metadata.IPAddress
		click.UserAgent = metadata.UserAgent
		click.Referer = metadata.Referer
	}
	f.recorder.Enqueue(click)

	return resolved.OriginalURL, nil
}

func (f *VisitFlowImpl) fromCache(ctx context.Context, key string) *ResolvedLink {
	if f.rc == nil || f.cacheConfig == nil || !f.cacheConfig.Enabled {
		return nil
	}
	bs, err := f.rc.Get(ctx, redisKey(*f.cacheConfig, utils.ShortLinkCacheKeyPrefix+key)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}
	var out ResolvedLink
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil
	}
	return &out
}

func (f *VisitFlowImpl) toCache(ctx context.Context, key string, resolved *ResolvedLink) {
	if f.rc == nil || f.cacheConfig == nil || !f.cacheConfig.Enabled {
		return
	}
	bs, err := json.Marshal(resolved)
	if err != nil {
		return
	}
	// Cache failures are invisible to callers; the database remains authoritative
	_ = f.rc.Set(ctx, redisKey(*f.cacheConfig, utils.ShortLinkCacheKeyPrefix+key), bs, utils.ResolveCacheTTL).Err()
}
