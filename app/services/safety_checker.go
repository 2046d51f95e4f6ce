package services

import (
	"net/url"
	"regexp"
	"strings"
)

// Default blocklist: other shorteners (no double shortening) plus known bad domains
var defaultBlockedDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"short.link",
	"malware-example.com",
}

var (
	// Raw IPv4 hosts and very long random-looking hostnames are refused
	ipHostPattern     = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}$`)
	randomHostPattern = regexp.MustCompile(`[a-z0-9]{20,}`)
)

// SafetyChecker decides whether a normalized URL is acceptable as a shortening target
type SafetyChecker interface {
	IsSafe(normalizedURL string) bool
}

type SafetyCheckerImpl struct {
	blocked []string
}

// NewSafetyChecker builds a checker from the configured blocklist; an empty list falls
// back to the built-in defaults
func NewSafetyChecker(blockedDomains []string) SafetyChecker {
	if len(blockedDomains) == 0 {
		blockedDomains = defaultBlockedDomains
	}
	normalized := make([]string, 0, len(blockedDomains))
	for _, d := range blockedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &SafetyCheckerImpl{blocked: normalized}
}

func (s *SafetyCheckerImpl) IsSafe(normalizedURL string) bool {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, blocked := range s.blocked {
		if strings.Contains(host, blocked) {
			return false
		}
	}

	if ipHostPattern.MatchString(host) {
		return false
	}
	if randomHostPattern.MatchString(host) {
		return false
	}

	return true
}
