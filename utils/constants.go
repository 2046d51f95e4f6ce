package utils

import "time"

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys populated by handlers for flows and logging
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Short code generation constants
const (
	// CodeAlphabet is the 62-symbol alphabet codes are drawn from
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// CodeLength is the length of generated short codes
	CodeLength = 6

	// MaxGenerateAttempts bounds the random-draw loop before the digest fallback
	MaxGenerateAttempts = 100

	// MaxCreateRetries bounds retries of the whole generate+insert loop when the
	// database reports a uniqueness violation despite the pre-check
	MaxCreateRetries = 5
)

// Click recording limits
const (
	// MaxUserAgentLength truncates stored user-agent strings
	MaxUserAgentLength = 1000

	// MaxRefererLength truncates stored referer strings
	MaxRefererLength = 2000
)

// Cache key prefixes and TTLs. Keys are further namespaced by the configured Redis prefix.
const (
	// ShortLinkCacheKeyPrefix namespaces resolved short links
	ShortLinkCacheKeyPrefix = "short_link:"

	// AnalyticsCacheKeyPrefix namespaces per-link analytics rollups
	AnalyticsCacheKeyPrefix = "analytics:"

	// ResolveCacheTTL bounds staleness of cached redirects after a link is changed
	ResolveCacheTTL = 5 * time.Minute

	// AnalyticsCacheTTL bounds staleness of analytics rollups
	AnalyticsCacheTTL = 5 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
