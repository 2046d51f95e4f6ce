package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ShortenFlow handles creation and management of short links
type ShortenFlow interface {
	CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest, metadata *ClientMetadata) (*dto.CreateShortLinkResponse, error)
	CreateShortLinks(ctx context.Context, req *dto.BulkCreateShortLinksRequest, metadata *ClientMetadata) (*dto.BulkCreateShortLinksResponse, error)
	ListShortLinks(ctx context.Context, req *dto.ListShortLinksRequest) (*dto.ListShortLinksResponse, error)
	GetShortLink(ctx context.Context, key string) (*dto.GetShortLinkResponse, error)
	DeactivateShortLink(ctx context.Context, key string) (*dto.DeactivateShortLinkResponse, error)
	SystemStats(ctx context.Context) (*dto.SystemStatsResponse, error)
}

type ShortenFlowImpl struct {
	shortRepo       repository.ShortLinkRepository
	normalizer      services.URLNormalizer
	safety          services.SafetyChecker
	aliasValidator  AliasValidator
	codeGen         CodeGenerator
	shortenerConfig config.ShortenerConfig
	cacheConfig     *config.CacheConfig
	rc              *redis.Client
	db              *gorm.DB
}

// NewShortenFlow creates a new shorten flow instance
func NewShortenFlow(
	shortRepo repository.ShortLinkRepository,
	normalizer services.URLNormalizer,
	safety services.SafetyChecker,
	aliasValidator AliasValidator,
	codeGen CodeGenerator,
	shortenerConfig config.ShortenerConfig,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) ShortenFlow {
	return &ShortenFlowImpl{
		shortRepo:       shortRepo,
		normalizer:      normalizer,
		safety:          safety,
		aliasValidator:  aliasValidator,
		codeGen:         codeGen,
		shortenerConfig: shortenerConfig,
		cacheConfig:     cacheConfig,
		rc:              rc,
		db:              db,
	}
}

func (s *ShortenFlowImpl) CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest, metadata *ClientMetadata) (*dto.CreateShortLinkResponse, error) {
	if req == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Request body is required", nil)
	}

	normalized, err := s.normalizer.Normalize(req.URL)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if !s.safety.IsSafe(normalized) {
		return nil, ErrUnsafeURL
	}

	var alias *string
	if req.CustomAlias != nil {
		trimmed := strings.TrimSpace(*req.CustomAlias)
		if trimmed != "" {
			if err := s.aliasValidator.Validate(ctx, trimmed); err != nil {
				return nil, err
			}
			alias = &trimmed
		}
	}

	expiresAt := utils.TimeToUTCPtr(req.ExpiresAt)
	if utils.IsExpiredPtr(expiresAt) {
		return nil, NewBusinessError("VALIDATION_ERROR", "expires_at must be in the future", nil)
	}

	// Alias-less requests for an already shortened URL return the existing link
	if alias == nil {
		existing, err := s.shortRepo.FirstActiveByOriginalURL(ctx, normalized)
		if err != nil {
			return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup existing short link", err)
		}
		if existing != nil {
			return &dto.CreateShortLinkResponse{
				Message:  "Short link already exists",
				Item:     ToShortLinkDTO(existing, s.shortenerConfig.BaseURL),
				Existing: true,
			}, nil
		}
	}

	// The availability pre-checks race with concurrent creates; the unique constraints
	// are authoritative, so duplicates from the insert restart the loop with a new code
	for attempt := 0; attempt < utils.MaxCreateRetries; attempt++ {
		code, err := s.codeGen.Generate(ctx, normalized)
		if err != nil {
			return nil, NewBusinessError("CODE_GENERATION_FAILED", "Failed to generate short code", err)
		}

		row := &models.ShortLink{
			UUID:        uuid.New(),
			OriginalURL: normalized,
			Code:        code,
			CustomAlias: alias,
			Domain:      services.HostOf(normalized),
			IsActive:    true,
			ExpiresAt:   expiresAt,
		}

		err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			return s.shortRepo.Save(txCtx, row)
		})
		if err == nil {
			return &dto.CreateShortLinkResponse{
				Message: "Short link created",
				Item:    ToShortLinkDTO(row, s.shortenerConfig.BaseURL),
			}, nil
		}
		if !repository.IsDuplicateKey(err) {
			return nil, NewBusinessError("CREATE_SHORT_LINK_FAILED", "Failed to create short link", err)
		}
		if alias != nil {
			taken, terr := s.shortRepo.LookupKeyTaken(ctx, *alias)
			if terr == nil && taken {
				return nil, ErrAliasTaken
			}
		}
	}

	return nil, ErrCodeExhausted
}

func (s *ShortenFlowImpl) CreateShortLinks(ctx context.Context, req *dto.BulkCreateShortLinksRequest, metadata *ClientMetadata) (*dto.BulkCreateShortLinksResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "items must contain at least one element", nil)
	}

	results := make([]dto.BulkShortLinkResult, 0, len(req.Items))
	created := 0
	for i := range req.Items {
		item := req.Items[i]
		resp, err := s.CreateShortLink(ctx, &item, metadata)
		if err != nil {
			results = append(results, dto.BulkShortLinkResult{
				Index: i,
				Error: bulkErrorDetail(err),
			})
			continue
		}
		created++
		out := resp.Item
		results = append(results, dto.BulkShortLinkResult{
			Index:    i,
			Success:  true,
			Existing: resp.Existing,
			Item:     &out,
		})
	}

	return &dto.BulkCreateShortLinksResponse{
		Message: "Bulk shorten processed",
		Results: results,
		Created: created,
		Failed:  len(req.Items) - created,
	}, nil
}

func (s *ShortenFlowImpl) ListShortLinks(ctx context.Context, req *dto.ListShortLinksRequest) (*dto.ListShortLinksResponse, error) {
	if req == nil {
		req = &dto.ListShortLinksRequest{}
	}
	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, ErrInvalidPageSize
	}
	if req.CreatedAfter != nil && req.CreatedBefore != nil && req.CreatedAfter.After(*req.CreatedBefore) {
		return nil, ErrStartDateAfterEndDate
	}

	filter := models.ShortLinkFilter{
		Domain:        req.Domain,
		IsActive:      req.IsActive,
		CreatedAfter:  utils.TimeToUTCPtr(req.CreatedAfter),
		CreatedBefore: utils.TimeToUTCPtr(req.CreatedBefore),
	}

	total, err := s.shortRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_SHORT_LINKS_FAILED", "Failed to count short links", err)
	}

	rows, err := s.shortRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_SHORT_LINKS_FAILED", "Failed to list short links", err)
	}

	items := make([]dto.ShortLinkDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToShortLinkDTO(row, s.shortenerConfig.BaseURL))
	}

	return &dto.ListShortLinksResponse{
		Message: "Short links retrieved",
		Items:   items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (s *ShortenFlowImpl) GetShortLink(ctx context.Context, key string) (*dto.GetShortLinkResponse, error) {
	row, err := s.shortRepo.ByLookupKey(ctx, key)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if row == nil {
		return nil, ErrLinkNotFound
	}
	return &dto.GetShortLinkResponse{
		Message: "Short link retrieved",
		Item:    ToShortLinkDTO(row, s.shortenerConfig.BaseURL),
	}, nil
}

func (s *ShortenFlowImpl) DeactivateShortLink(ctx context.Context, key string) (*dto.DeactivateShortLinkResponse, error) {
	row, err := s.shortRepo.ByLookupKey(ctx, key)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if row == nil {
		return nil, ErrLinkNotFound
	}
	if err := s.shortRepo.Deactivate(ctx, row.ID); err != nil {
		return nil, NewBusinessError("DEACTIVATE_SHORT_LINK_FAILED", "Failed to deactivate short link", err)
	}
	s.invalidateResolveCache(ctx, row.Code)
	if row.CustomAlias != nil {
		s.invalidateResolveCache(ctx, *row.CustomAlias)
	}
	return &dto.DeactivateShortLinkResponse{Message: "Short link deactivated"}, nil
}

// invalidateResolveCache drops the cached redirect entry so a deactivated link stops
// resolving before the cache TTL lapses
func (s *ShortenFlowImpl) invalidateResolveCache(ctx context.Context, key string) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	_ = s.rc.Del(ctx, redisKey(*s.cacheConfig, utils.ShortLinkCacheKeyPrefix+key)).Err()
}

func (s *ShortenFlowImpl) SystemStats(ctx context.Context) (*dto.SystemStatsResponse, error) {
	totalLinks, err := s.shortRepo.Count(ctx, models.ShortLinkFilter{})
	if err != nil {
		return nil, NewBusinessError("SYSTEM_STATS_FAILED", "Failed to count short links", err)
	}
	totalClicks, err := s.shortRepo.TotalClicks(ctx)
	if err != nil {
		return nil, NewBusinessError("SYSTEM_STATS_FAILED", "Failed to sum clicks", err)
	}
	linksToday, err := s.shortRepo.CountCreatedSince(ctx, utils.StartOfDay(utils.UTCNow()))
	if err != nil {
		return nil, NewBusinessError("SYSTEM_STATS_FAILED", "Failed to count links created today", err)
	}
	topDomains, err := s.shortRepo.TopDomains(ctx, 10)
	if err != nil {
		return nil, NewBusinessError("SYSTEM_STATS_FAILED", "Failed to rank domains", err)
	}

	domains := make([]dto.DomainStatsDTO, 0, len(topDomains))
	for _, d := range topDomains {
		domains = append(domains, dto.DomainStatsDTO{
			Domain: d.Domain,
			Links:  d.Links,
			Clicks: d.Clicks,
		})
	}

	return &dto.SystemStatsResponse{
		Message:     "System stats retrieved",
		TotalLinks:  totalLinks,
		TotalClicks: totalClicks,
		LinksToday:  linksToday,
		TopDomains:  domains,
	}, nil
}

func bulkErrorDetail(err error) *dto.ErrorDetail {
	code := "CREATE_SHORT_LINK_FAILED"
	switch {
	case IsInvalidURL(err):
		code = "INVALID_URL"
	case IsUnsafeURL(err):
		code = "UNSAFE_URL"
	case IsInvalidAlias(err):
		code = "INVALID_ALIAS"
	case IsAliasTaken(err):
		code = "ALIAS_TAKEN"
	case IsCodeExhausted(err):
		code = "CODE_EXHAUSTED"
	}
	return &dto.ErrorDetail{
		Code:    code,
		Details: err.Error(),
	}
}
