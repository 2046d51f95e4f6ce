// Package tests contains test cases for the business flows
package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShortLinkRepo(testDB *testingutil.TestDB) repository.ShortLinkRepository {
	return repository.NewShortLinkRepository(testDB.DB)
}

func newTestShortenFlow(testDB *testingutil.TestDB) businessflow.ShortenFlow {
	shortRepo := newTestShortLinkRepo(testDB)
	return businessflow.NewShortenFlow(
		shortRepo,
		services.NewURLNormalizer(),
		services.NewSafetyChecker(nil),
		businessflow.NewAliasValidator(shortRepo),
		businessflow.NewCodeGenerator(shortRepo),
		config.ShortenerConfig{BaseURL: "https://ksng.ir"},
		&config.CacheConfig{Enabled: false},
		nil,
		testDB.DB,
	)
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("203.0.113.7", "Test User Agent")
}

func TestShortenFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestShortenFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreateShortLink", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/articles/42",
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, resp.Existing)
			assert.Len(t, resp.Item.Code, utils.CodeLength)
			assert.Equal(t, "https://example.org/articles/42", resp.Item.OriginalURL)
			assert.Equal(t, "example.org", resp.Item.Domain)
			assert.Equal(t, "https://ksng.ir/"+resp.Item.Code, resp.Item.ShortURL)
			assert.True(t, resp.Item.IsActive)
		})

		t.Run("NormalizesSchemeAndHost", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "EXAMPLE.org/Normalized",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(resp.Item.OriginalURL, "https://example.org/"))
		})

		t.Run("DeduplicatesAliasLessCreates", func(t *testing.T) {
			first, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/dedupe-me",
			}, testMetadata())
			require.NoError(t, err)
			require.False(t, first.Existing)

			second, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/dedupe-me",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, second.Existing)
			assert.Equal(t, first.Item.Code, second.Item.Code)
		})

		t.Run("AliasedCreateSkipsDedupe", func(t *testing.T) {
			alias1 := "first-alias"
			first, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/same-target",
				CustomAlias: &alias1,
			}, testMetadata())
			require.NoError(t, err)
			require.False(t, first.Existing)

			alias2 := "second-alias"
			second, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/same-target",
				CustomAlias: &alias2,
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, second.Existing)
			assert.NotEqual(t, first.Item.Code, second.Item.Code)
		})

		t.Run("InvalidURL", func(t *testing.T) {
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "   ",
			}, testMetadata())
			assert.True(t, businessflow.IsInvalidURL(err))
		})

		t.Run("UnsafeURL", func(t *testing.T) {
			// Shortener domains are blocked to avoid redirect chains
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://bit.ly/abc123",
			}, testMetadata())
			assert.True(t, businessflow.IsUnsafeURL(err))
		})

		t.Run("InvalidAlias", func(t *testing.T) {
			alias := "a!"
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/bad-alias",
				CustomAlias: &alias,
			}, testMetadata())
			assert.True(t, businessflow.IsInvalidAlias(err))
		})

		t.Run("ReservedAlias", func(t *testing.T) {
			alias := "admin"
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/reserved-alias",
				CustomAlias: &alias,
			}, testMetadata())
			assert.True(t, businessflow.IsInvalidAlias(err))
		})

		t.Run("AliasTaken", func(t *testing.T) {
			alias := "claimed"
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/claim-one",
				CustomAlias: &alias,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/claim-two",
				CustomAlias: &alias,
			}, testMetadata())
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("AliasTakenByInactiveLink", func(t *testing.T) {
			alias := "burned"
			created, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/burn-me",
				CustomAlias: &alias,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.DeactivateShortLink(ctx, *created.Item.CustomAlias)
			require.NoError(t, err)

			// The slot stays reserved after deactivation
			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:         "https://example.org/burn-again",
				CustomAlias: &alias,
			}, testMetadata())
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("ExpiryInPast", func(t *testing.T) {
			past := time.Now().UTC().Add(-1 * time.Hour)
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:       "https://example.org/already-over",
				ExpiresAt: &past,
			}, testMetadata())
			require.Error(t, err)
			assert.False(t, businessflow.IsInvalidURL(err))
		})

		t.Run("ExpiryInFuture", func(t *testing.T) {
			future := time.Now().UTC().Add(24 * time.Hour)
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL:       "https://example.org/ends-tomorrow",
				ExpiresAt: &future,
			}, testMetadata())
			require.NoError(t, err)
			assert.NotNil(t, resp.Item.ExpiresAt)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestShortenFlowBulk(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestShortenFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("MixedResultsKeepOrder", func(t *testing.T) {
			badAlias := "x"
			resp, err := flow.CreateShortLinks(ctx, &dto.BulkCreateShortLinksRequest{
				Items: []dto.CreateShortLinkRequest{
					{URL: "https://example.org/bulk-one"},
					{URL: "https://bit.ly/blocked"},
					{URL: "https://example.org/bulk-two", CustomAlias: &badAlias},
					{URL: "https://example.org/bulk-three"},
				},
			}, testMetadata())
			require.NoError(t, err)
			require.Len(t, resp.Results, 4)
			assert.Equal(t, 2, resp.Created)
			assert.Equal(t, 2, resp.Failed)

			assert.True(t, resp.Results[0].Success)
			assert.Equal(t, 0, resp.Results[0].Index)

			assert.False(t, resp.Results[1].Success)
			require.NotNil(t, resp.Results[1].Error)
			assert.Equal(t, "UNSAFE_URL", resp.Results[1].Error.Code)

			assert.False(t, resp.Results[2].Success)
			require.NotNil(t, resp.Results[2].Error)
			assert.Equal(t, "INVALID_ALIAS", resp.Results[2].Error.Code)

			assert.True(t, resp.Results[3].Success)
			assert.Equal(t, 3, resp.Results[3].Index)
		})

		t.Run("DuplicateURLWithinBatch", func(t *testing.T) {
			resp, err := flow.CreateShortLinks(ctx, &dto.BulkCreateShortLinksRequest{
				Items: []dto.CreateShortLinkRequest{
					{URL: "https://example.org/batch-dupe"},
					{URL: "https://example.org/batch-dupe"},
				},
			}, testMetadata())
			require.NoError(t, err)
			require.Len(t, resp.Results, 2)
			assert.False(t, resp.Results[0].Existing)
			assert.True(t, resp.Results[1].Existing)
			assert.Equal(t, resp.Results[0].Item.Code, resp.Results[1].Item.Code)
		})

		t.Run("EmptyBatch", func(t *testing.T) {
			_, err := flow.CreateShortLinks(ctx, &dto.BulkCreateShortLinksRequest{}, testMetadata())
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestShortenFlowListGetDeactivate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestShortenFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ListShortLinks", func(t *testing.T) {
			for _, u := range []string{
				"https://example.org/list-one",
				"https://example.org/list-two",
				"https://example.org/list-three",
			} {
				_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{URL: u}, testMetadata())
				require.NoError(t, err)
			}

			resp, err := flow.ListShortLinks(ctx, &dto.ListShortLinksRequest{Page: 1, PageSize: 2})
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
			assert.GreaterOrEqual(t, resp.Pagination.Total, int64(3))
			assert.Equal(t, 1, resp.Pagination.Page)
			assert.Equal(t, 2, resp.Pagination.PageSize)
		})

		t.Run("ListDefaults", func(t *testing.T) {
			resp, err := flow.ListShortLinks(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Pagination.Page)
			assert.Equal(t, 20, resp.Pagination.PageSize)
		})

		t.Run("ListInvalidPage", func(t *testing.T) {
			_, err := flow.ListShortLinks(ctx, &dto.ListShortLinksRequest{Page: -1})
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		t.Run("ListInvalidPageSize", func(t *testing.T) {
			_, err := flow.ListShortLinks(ctx, &dto.ListShortLinksRequest{PageSize: 500})
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		t.Run("ListInvalidDateRange", func(t *testing.T) {
			after := time.Now().UTC()
			before := after.Add(-24 * time.Hour)
			_, err := flow.ListShortLinks(ctx, &dto.ListShortLinksRequest{
				CreatedAfter:  &after,
				CreatedBefore: &before,
			})
			assert.True(t, businessflow.IsStartDateAfterEndDate(err))
		})

		t.Run("GetShortLink", func(t *testing.T) {
			created, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/get-me",
			}, testMetadata())
			require.NoError(t, err)

			resp, err := flow.GetShortLink(ctx, created.Item.Code)
			require.NoError(t, err)
			assert.Equal(t, created.Item.Code, resp.Item.Code)
		})

		t.Run("GetShortLinkNotFound", func(t *testing.T) {
			_, err := flow.GetShortLink(ctx, "missing")
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("DeactivateShortLink", func(t *testing.T) {
			created, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/deactivate-me",
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.DeactivateShortLink(ctx, created.Item.Code)
			require.NoError(t, err)

			// Inactive links are invisible to lookups
			_, err = flow.GetShortLink(ctx, created.Item.Code)
			assert.True(t, businessflow.IsLinkNotFound(err))

			_, err = flow.DeactivateShortLink(ctx, created.Item.Code)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("SystemStats", func(t *testing.T) {
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				URL: "https://example.org/stats-me",
			}, testMetadata())
			require.NoError(t, err)

			stats, err := flow.SystemStats(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, stats.TotalLinks, int64(1))
			assert.GreaterOrEqual(t, stats.LinksToday, int64(1))
			require.NotEmpty(t, stats.TopDomains)
			assert.Equal(t, "example.org", stats.TopDomains[0].Domain)
		})

		return nil
	})
	require.NoError(t, err)
}
