// Package businessflow contains the business logic for the application.
package businessflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds the client-related information captured per request
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referer   string `json:"referer,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetReferer sets the referer header value
func (cm *ClientMetadata) SetReferer(referer string) {
	cm.Referer = referer
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

// shortURLFor joins the public base URL with the link's lookup key
func shortURLFor(baseURL string, m *models.ShortLink) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), m.LookupKey())
}

// ToShortLinkDTO converts a short link model for API responses
func ToShortLinkDTO(m *models.ShortLink, baseURL string) dto.ShortLinkDTO {
	out := dto.ShortLinkDTO{
		UUID:        m.UUID.String(),
		OriginalURL: m.OriginalURL,
		Code:        m.Code,
		CustomAlias: m.CustomAlias,
		ShortURL:    shortURLFor(baseURL, m),
		Domain:      m.Domain,
		ClickCount:  m.ClickCount,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
	if m.ExpiresAt != nil {
		formatted := m.ExpiresAt.Format(time.RFC3339)
		out.ExpiresAt = &formatted
	}
	return out
}
