// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLink(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			link := &models.ShortLink{}
			assert.Equal(t, "short_links", link.TableName())
		})

		t.Run("CreateShortLink", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)
			assert.NotZero(t, link.ID)
			assert.Len(t, link.Code, utils.CodeLength)
			assert.Nil(t, link.CustomAlias)
			assert.True(t, link.IsActive)
			assert.Zero(t, link.ClickCount)
		})

		t.Run("LookupKeyWithoutAlias", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)
			assert.Equal(t, link.Code, link.LookupKey())
		})

		t.Run("LookupKeyWithAlias", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLinkWithAlias("my-campaign")
			require.NoError(t, err)
			assert.Equal(t, "my-campaign", link.LookupKey())
		})

		t.Run("IsExpired", func(t *testing.T) {
			now := time.Now().UTC()

			link := &models.ShortLink{}
			assert.False(t, link.IsExpired(now), "link without expiry never expires")

			future := now.Add(1 * time.Hour)
			link.ExpiresAt = &future
			assert.False(t, link.IsExpired(now))

			past := now.Add(-1 * time.Hour)
			link.ExpiresAt = &past
			assert.True(t, link.IsExpired(now))
		})

		t.Run("UniqueCode", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			dup := &models.ShortLink{
				UUID:        link.UUID,
				OriginalURL: "https://example.com/other",
				Code:        link.Code,
				Domain:      "example.com",
				IsActive:    true,
			}
			err = testDB.DB.Create(dup).Error
			assert.Error(t, err) // Should fail due to unique constraint on code
		})

		t.Run("UniqueCustomAlias", func(t *testing.T) {
			_, err := fixtures.CreateTestShortLinkWithAlias("taken-alias")
			require.NoError(t, err)

			_, err = fixtures.CreateTestShortLinkWithAlias("taken-alias")
			assert.Error(t, err) // Should fail due to unique constraint on custom_alias
		})

		return nil
	})
	require.NoError(t, err)
}

func TestClickEvent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			event := &models.ClickEvent{}
			assert.Equal(t, "click_events", event.TableName())
		})

		t.Run("CreateClickEvent", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			event, err := fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)
			assert.NotZero(t, event.ID)
			assert.Equal(t, link.ID, event.ShortLinkID)
			assert.Equal(t, models.DeviceTypeDesktop, event.DeviceType)
			assert.NotNil(t, event.UserAgent)
			assert.NotNil(t, event.Referer)
		})

		t.Run("DeviceTypeConstants", func(t *testing.T) {
			assert.Equal(t, "mobile", models.DeviceTypeMobile)
			assert.Equal(t, "tablet", models.DeviceTypeTablet)
			assert.Equal(t, "desktop", models.DeviceTypeDesktop)
			assert.Equal(t, "unknown", models.DeviceTypeUnknown)
		})

		t.Run("NullableFields", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			event := &models.ClickEvent{
				ShortLinkID: link.ID,
				IPAddress:   "198.51.100.1",
				DeviceType:  models.DeviceTypeUnknown,
			}
			err = testDB.DB.Create(event).Error
			require.NoError(t, err)
			assert.Nil(t, event.UserAgent)
			assert.Nil(t, event.Referer)
		})

		return nil
	})
	require.NoError(t, err)
}
