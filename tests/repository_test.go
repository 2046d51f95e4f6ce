// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"sync"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinkRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewShortLinkRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)
			assert.NotZero(t, link.ID)
		})

		t.Run("ByID", func(t *testing.T) {
			original, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			link, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			assert.NotNil(t, link)
			assert.Equal(t, original.ID, link.ID)
			assert.Equal(t, original.Code, link.Code)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			link, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			link, err := repo.ByUUID(ctx, original.UUID)
			require.NoError(t, err)
			assert.NotNil(t, link)
			assert.Equal(t, original.ID, link.ID)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			link, err := repo.ByUUID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("ByLookupKeyMatchesCode", func(t *testing.T) {
			original, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			link, err := repo.ByLookupKey(ctx, original.Code)
			require.NoError(t, err)
			assert.NotNil(t, link)
			assert.Equal(t, original.ID, link.ID)
		})

		t.Run("ByLookupKeyMatchesAlias", func(t *testing.T) {
			original, err := fixtures.CreateTestShortLinkWithAlias("lookup-alias")
			require.NoError(t, err)

			link, err := repo.ByLookupKey(ctx, "lookup-alias")
			require.NoError(t, err)
			assert.NotNil(t, link)
			assert.Equal(t, original.ID, link.ID)
		})

		t.Run("ByLookupKeyNotFound", func(t *testing.T) {
			link, err := repo.ByLookupKey(ctx, "no-such-key")
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("ByLookupKeySkipsInactive", func(t *testing.T) {
			inactive, err := fixtures.CreateInactiveShortLink()
			require.NoError(t, err)

			link, err := repo.ByLookupKey(ctx, inactive.Code)
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("LookupKeyTaken", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			taken, err := repo.LookupKeyTaken(ctx, link.Code)
			require.NoError(t, err)
			assert.True(t, taken)

			taken, err = repo.LookupKeyTaken(ctx, "free-key")
			require.NoError(t, err)
			assert.False(t, taken)
		})

		t.Run("LookupKeyTakenIncludesInactive", func(t *testing.T) {
			// Deactivated rows keep their slot reserved
			inactive, err := fixtures.CreateInactiveShortLink()
			require.NoError(t, err)

			taken, err := repo.LookupKeyTaken(ctx, inactive.Code)
			require.NoError(t, err)
			assert.True(t, taken)
		})

		t.Run("FirstActiveByOriginalURL", func(t *testing.T) {
			original, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			link, err := repo.FirstActiveByOriginalURL(ctx, original.OriginalURL)
			require.NoError(t, err)
			assert.NotNil(t, link)
			assert.Equal(t, original.ID, link.ID)
		})

		t.Run("FirstActiveByOriginalURLSkipsAliased", func(t *testing.T) {
			aliased, err := fixtures.CreateTestShortLinkWithAlias("dedupe-alias")
			require.NoError(t, err)

			link, err := repo.FirstActiveByOriginalURL(ctx, aliased.OriginalURL)
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("FirstActiveByOriginalURLNotFound", func(t *testing.T) {
			link, err := repo.FirstActiveByOriginalURL(ctx, "https://never-shortened.example.com/")
			assert.NoError(t, err)
			assert.Nil(t, link)
		})

		t.Run("IncrementClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			require.NoError(t, repo.IncrementClicks(ctx, link.ID))
			require.NoError(t, repo.IncrementClicks(ctx, link.ID))

			reloaded, err := repo.ByID(ctx, link.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(2), reloaded.ClickCount)
		})

		t.Run("IncrementClicksConcurrent", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			// The counter update runs inside the database, so parallel visits
			// must never lose an increment
			const workers = 50
			errs := make(chan error, workers)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- repo.IncrementClicks(ctx, link.ID)
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			reloaded, err := repo.ByID(ctx, link.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(workers), reloaded.ClickCount)
		})

		t.Run("Deactivate", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			require.NoError(t, repo.Deactivate(ctx, link.ID))

			reloaded, err := repo.ByID(ctx, link.ID)
			require.NoError(t, err)
			assert.False(t, reloaded.IsActive)
		})

		t.Run("DeactivateNotFound", func(t *testing.T) {
			err := repo.Deactivate(ctx, 999999)
			assert.Error(t, err)
		})

		t.Run("ByFilter", func(t *testing.T) {
			links, err := fixtures.CreateMultipleTestShortLinks(3)
			require.NoError(t, err)
			require.Len(t, links, 3)

			// Filter by code
			filter := models.ShortLinkFilter{Code: utils.ToPtr(links[0].Code)}
			result, err := repo.ByFilter(ctx, filter, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, result, 1)
			assert.Equal(t, links[0].ID, result[0].ID)

			// Filter by domain
			filter = models.ShortLinkFilter{Domain: utils.ToPtr("example.com")}
			result, err = repo.ByFilter(ctx, filter, "", 0, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(result), 3)

			// Filter by IsActive
			filter = models.ShortLinkFilter{IsActive: utils.ToPtr(true)}
			result, err = repo.ByFilter(ctx, filter, "", 0, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(result), 3)
		})

		t.Run("ByFilterPagination", func(t *testing.T) {
			_, err := fixtures.CreateMultipleTestShortLinks(5)
			require.NoError(t, err)

			page1, err := repo.ByFilter(ctx, models.ShortLinkFilter{}, "id ASC", 2, 0)
			require.NoError(t, err)
			assert.Len(t, page1, 2)

			page2, err := repo.ByFilter(ctx, models.ShortLinkFilter{}, "id ASC", 2, 2)
			require.NoError(t, err)
			assert.Len(t, page2, 2)
			assert.NotEqual(t, page1[0].ID, page2[0].ID)
		})

		t.Run("Count", func(t *testing.T) {
			before, err := repo.Count(ctx, models.ShortLinkFilter{})
			require.NoError(t, err)

			_, err = fixtures.CreateTestShortLink()
			require.NoError(t, err)

			after, err := repo.Count(ctx, models.ShortLinkFilter{})
			require.NoError(t, err)
			assert.Equal(t, before+1, after)
		})

		t.Run("Exists", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			exists, err := repo.Exists(ctx, models.ShortLinkFilter{Code: &link.Code})
			require.NoError(t, err)
			assert.True(t, exists)
		})

		t.Run("CountCreatedSince", func(t *testing.T) {
			_, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			count, err := repo.CountCreatedSince(ctx, time.Now().UTC().Add(-1*time.Minute))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(1))

			count, err = repo.CountCreatedSince(ctx, time.Now().UTC().Add(1*time.Hour))
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("TotalClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)
			require.NoError(t, repo.IncrementClicks(ctx, link.ID))

			total, err := repo.TotalClicks(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, total, int64(1))
		})

		t.Run("TopDomains", func(t *testing.T) {
			_, err := fixtures.CreateMultipleTestShortLinks(2)
			require.NoError(t, err)

			domains, err := repo.TopDomains(ctx, 10)
			require.NoError(t, err)
			require.NotEmpty(t, domains)
			assert.Equal(t, "example.com", domains[0].Domain)
			assert.GreaterOrEqual(t, domains[0].Links, int64(2))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestClickEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewClickEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			event, err := fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)
			assert.NotZero(t, event.ID)
		})

		t.Run("CountByLink", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)

			count, err := repo.CountByLink(ctx, link.ID, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			// Window bounded to the future excludes everything
			future := time.Now().UTC().Add(1 * time.Hour)
			count, err = repo.CountByLink(ctx, link.ID, &future)
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("DailyClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			now := time.Now().UTC()
			yesterday := now.Add(-24 * time.Hour)

			_, err = fixtures.CreateClickEventAt(link.ID, now, models.DeviceTypeDesktop)
			require.NoError(t, err)
			_, err = fixtures.CreateClickEventAt(link.ID, now, models.DeviceTypeMobile)
			require.NoError(t, err)
			_, err = fixtures.CreateClickEventAt(link.ID, yesterday, models.DeviceTypeDesktop)
			require.NoError(t, err)

			buckets, err := repo.DailyClicks(ctx, link.ID, now.Add(-7*24*time.Hour))
			require.NoError(t, err)
			require.Len(t, buckets, 2)

			// Buckets come back in ascending day order
			assert.True(t, buckets[0].Day.Before(buckets[1].Day))
			assert.Equal(t, int64(1), buckets[0].Clicks)
			assert.Equal(t, int64(2), buckets[1].Clicks)
		})

		t.Run("CountByDeviceType", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			now := time.Now().UTC()
			_, err = fixtures.CreateClickEventAt(link.ID, now, models.DeviceTypeMobile)
			require.NoError(t, err)
			_, err = fixtures.CreateClickEventAt(link.ID, now, models.DeviceTypeMobile)
			require.NoError(t, err)
			_, err = fixtures.CreateClickEventAt(link.ID, now, models.DeviceTypeDesktop)
			require.NoError(t, err)

			counts, err := repo.CountByDeviceType(ctx, link.ID, now.Add(-1*time.Hour))
			require.NoError(t, err)
			require.Len(t, counts, 2)

			byLabel := map[string]int64{}
			for _, c := range counts {
				byLabel[c.Label] = c.Count
			}
			assert.Equal(t, int64(2), byLabel[models.DeviceTypeMobile])
			assert.Equal(t, int64(1), byLabel[models.DeviceTypeDesktop])
		})

		t.Run("TopBrowsers", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)

			browsers, err := repo.TopBrowsers(ctx, link.ID, time.Now().UTC().Add(-1*time.Hour), 10)
			require.NoError(t, err)
			require.NotEmpty(t, browsers)
			assert.Equal(t, "Chrome", browsers[0].Label)
		})

		t.Run("TopCountries", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)

			countries, err := repo.TopCountries(ctx, link.ID, time.Now().UTC().Add(-1*time.Hour), 10)
			require.NoError(t, err)
			require.NotEmpty(t, countries)
			assert.Equal(t, "US", countries[0].Label)
		})

		t.Run("ListByLink", func(t *testing.T) {
			link, err := fixtures.CreateTestShortLink()
			require.NoError(t, err)

			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestClickEvent(link.ID)
			require.NoError(t, err)

			events, err := repo.ListByLink(ctx, link.ID, "created_at ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, events, 2)

			limited, err := repo.ListByLink(ctx, link.ID, "created_at ASC", 1, 0)
			require.NoError(t, err)
			assert.Len(t, limited, 1)
		})

		return nil
	})
	require.NoError(t, err)
}
