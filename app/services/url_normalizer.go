// Package services contains external-facing collaborators used by the business flows
package services

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when no host can be parsed out of the input
var ErrInvalidURL = errors.New("invalid URL")

// URLNormalizer turns raw user input into a normalized absolute URL: scheme defaulted
// to https when missing, host lowercased
type URLNormalizer interface {
	Normalize(raw string) (string, error)
}

type URLNormalizerImpl struct{}

func NewURLNormalizer() URLNormalizer {
	return &URLNormalizerImpl{}
}

func (n *URLNormalizerImpl) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}

	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String(), nil
}

// HostOf extracts the lowercased host of an already-normalized URL, without the port.
// Returns "" when the URL does not parse; callers treat that as no domain.
func HostOf(normalized string) string {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
