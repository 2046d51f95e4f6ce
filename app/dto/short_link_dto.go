package dto

import "time"

// CreateShortLinkRequest defines input for shortening a single URL
type CreateShortLinkRequest struct {
	URL         string     `json:"url" validate:"required,max=2048"`
	CustomAlias *string    `json:"custom_alias,omitempty" validate:"omitempty,min=3,max=50"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ShortLinkDTO is the API representation of a short link
type ShortLinkDTO struct {
	UUID        string  `json:"uuid"`
	OriginalURL string  `json:"original_url"`
	Code        string  `json:"code"`
	CustomAlias *string `json:"custom_alias,omitempty"`
	ShortURL    string  `json:"short_url"`
	Domain      string  `json:"domain,omitempty"`
	ClickCount  uint64  `json:"click_count"`
	IsActive    bool    `json:"is_active"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type CreateShortLinkResponse struct {
	Message  string       `json:"message"`
	Item     ShortLinkDTO `json:"item"`
	Existing bool         `json:"existing,omitempty"`
}

// BulkCreateShortLinksRequest defines input for shortening up to 100 URLs in one call
type BulkCreateShortLinksRequest struct {
	Items []CreateShortLinkRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// BulkShortLinkResult is the outcome for one bulk item, in request order
type BulkShortLinkResult struct {
	Index    int           `json:"index"`
	Success  bool          `json:"success"`
	Existing bool          `json:"existing,omitempty"`
	Item     *ShortLinkDTO `json:"item,omitempty"`
	Error    *ErrorDetail  `json:"error,omitempty"`
}

type BulkCreateShortLinksResponse struct {
	Message string                `json:"message"`
	Results []BulkShortLinkResult `json:"results"`
	Created int                   `json:"created"`
	Failed  int                   `json:"failed"`
}

// ListShortLinksRequest defines query parameters for listing short links
type ListShortLinksRequest struct {
	Page          int        `query:"page"`
	PageSize      int        `query:"page_size"`
	Domain        *string    `query:"domain"`
	IsActive      *bool      `query:"is_active"`
	CreatedAfter  *time.Time `query:"created_after"`
	CreatedBefore *time.Time `query:"created_before"`
}

type PaginationDTO struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type ListShortLinksResponse struct {
	Message    string         `json:"message"`
	Items      []ShortLinkDTO `json:"items"`
	Pagination PaginationDTO  `json:"pagination"`
}

type GetShortLinkResponse struct {
	Message string       `json:"message"`
	Item    ShortLinkDTO `json:"item"`
}

type DeactivateShortLinkResponse struct {
	Message string `json:"message"`
}

// DomainStatsDTO is one target domain in the system-wide ranking
type DomainStatsDTO struct {
	Domain string `json:"domain"`
	Links  int64  `json:"links"`
	Clicks int64  `json:"clicks"`
}

type SystemStatsResponse struct {
	Message     string           `json:"message"`
	TotalLinks  int64            `json:"total_links"`
	TotalClicks int64            `json:"total_clicks"`
	LinksToday  int64            `json:"links_today"`
	TopDomains  []DomainStatsDTO `json:"top_domains"`
}
