// Package testing provides test utilities and database setup for testing the shortening service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// randomCode produces a unique-enough code for fixtures. Real allocation goes
// through the code generator; fixtures only need to avoid colliding with each other.
func randomCode() string {
	const alphabet = utils.CodeAlphabet
	b := make([]byte, utils.CodeLength)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// CreateTestShortLink creates an active short link pointing at a unique example URL
func (tf *TestFixtures) CreateTestShortLink() (*models.ShortLink, error) {
	link := &models.ShortLink{
		UUID:        uuid.New(),
		OriginalURL: fmt.Sprintf("https://example.com/page/%d", rand.Intn(10000000)),
		Code:        randomCode(),
		Domain:      "example.com",
		IsActive:    true,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test short link: %w", err)
	}

	return link, nil
}

// CreateTestShortLinkWithAlias creates an active short link with the given custom alias
func (tf *TestFixtures) CreateTestShortLinkWithAlias(alias string) (*models.ShortLink, error) {
	link := &models.ShortLink{
		UUID:        uuid.New(),
		OriginalURL: fmt.Sprintf("https://example.com/aliased/%d", rand.Intn(10000000)),
		Code:        randomCode(),
		CustomAlias: &alias,
		Domain:      "example.com",
		IsActive:    true,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test short link with alias %s: %w", alias, err)
	}

	return link, nil
}

// CreateExpiredShortLink creates a short link whose expiry is already in the past
func (tf *TestFixtures) CreateExpiredShortLink() (*models.ShortLink, error) {
	expiresAt := time.Now().UTC().Add(-1 * time.Hour) // Expired 1 hour ago

	link := &models.ShortLink{
		UUID:        uuid.New(),
		OriginalURL: fmt.Sprintf("https://example.com/expired/%d", rand.Intn(10000000)),
		Code:        randomCode(),
		Domain:      "example.com",
		IsActive:    true,
		ExpiresAt:   &expiresAt,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired short link: %w", err)
	}

	return link, nil
}

// CreateInactiveShortLink creates a deactivated short link
func (tf *TestFixtures) CreateInactiveShortLink() (*models.ShortLink, error) {
	link := &models.ShortLink{
		UUID:        uuid.New(),
		OriginalURL: fmt.Sprintf("https://example.com/inactive/%d", rand.Intn(10000000)),
		Code:        randomCode(),
		Domain:      "example.com",
		IsActive:    false,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create inactive short link: %w", err)
	}

	// GORM skips zero-value fields on insert, so the is_active column default (true)
	// overrides IsActive: false above; force the column to false explicitly.
	if err := tf.DB.DB.Model(link).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate inactive short link: %w", err)
	}

	return link, nil
}

// CreateTestClickEvent creates a click event for the given short link
func (tf *TestFixtures) CreateTestClickEvent(shortLinkID uint) (*models.ClickEvent, error) {
	userAgent := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	referer := "https://referrer.example.com/"

	event := &models.ClickEvent{
		ShortLinkID: shortLinkID,
		IPAddress:   "203.0.113.7",
		UserAgent:   &userAgent,
		Referer:     &referer,
		DeviceType:  models.DeviceTypeDesktop,
		Browser:     "Chrome",
		OS:          "Windows",
		Country:     "US",
		City:        "New York",
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test click event: %w", err)
	}

	return event, nil
}

// CreateClickEventAt creates a click event backdated to the given time with the
// given device type, used by the analytics aggregation tests
func (tf *TestFixtures) CreateClickEventAt(shortLinkID uint, at time.Time, deviceType string) (*models.ClickEvent, error) {
	event := &models.ClickEvent{
		ShortLinkID: shortLinkID,
		IPAddress:   "203.0.113.7",
		DeviceType:  deviceType,
		Browser:     "Firefox",
		OS:          "Linux",
		Country:     "DE",
		City:        "Berlin",
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create click event: %w", err)
	}

	// CreatedAt is set by the database default; backdate it explicitly
	if err := tf.DB.DB.Model(event).UpdateColumn("created_at", at).Error; err != nil {
		return nil, fmt.Errorf("failed to backdate click event: %w", err)
	}
	event.CreatedAt = at

	return event, nil
}

// CreateMultipleTestShortLinks creates count active short links with distinct URLs
func (tf *TestFixtures) CreateMultipleTestShortLinks(count int) ([]*models.ShortLink, error) {
	var links []*models.ShortLink
	for i := 0; i < count; i++ {
		link, err := tf.CreateTestShortLink()
		if err != nil {
			return nil, fmt.Errorf("failed to create short link %d: %w", i, err)
		}
		links = append(links, link)
	}
	return links, nil
}
