package businessflow

import (
	"context"
	"strings"
	"testing"

	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubShortLinkRepo overrides only the availability check; everything else panics if
// called, which is the point
type stubShortLinkRepo struct {
	repository.ShortLinkRepository
	takenFn func(key string) bool
}

func (s *stubShortLinkRepo) LookupKeyTaken(ctx context.Context, key string) (bool, error) {
	return s.takenFn(key), nil
}

func TestRandomCode(t *testing.T) {
	const draws = 10000
	seen := make(map[string]bool, draws)
	for i := 0; i < draws; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		require.Len(t, code, utils.CodeLength)
		for _, ch := range code {
			require.True(t, strings.ContainsRune(utils.CodeAlphabet, ch), "unexpected character %q", ch)
		}
		seen[code] = true
	}
	// Even 10k draws from a 62^6 space should not collide
	assert.Len(t, seen, draws)
}

func TestDigestCode(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := digestCode("https://example.com/page", 1234567890)
		b := digestCode("https://example.com/page", 1234567890)
		assert.Equal(t, a, b)
		assert.Len(t, a, utils.CodeLength)
	})

	t.Run("TimestampChangesOutput", func(t *testing.T) {
		a := digestCode("https://example.com/page", 1234567890)
		b := digestCode("https://example.com/page", 1234567891)
		assert.NotEqual(t, a, b)
	})

	t.Run("URLChangesOutput", func(t *testing.T) {
		a := digestCode("https://example.com/one", 1234567890)
		b := digestCode("https://example.com/two", 1234567890)
		assert.NotEqual(t, a, b)
	})
}

func TestCodeGeneratorGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsFreeCode", func(t *testing.T) {
		gen := &CodeGeneratorImpl{
			shortRepo: &stubShortLinkRepo{takenFn: func(string) bool { return false }},
			now:       func() int64 { return 1 },
		}
		code, err := gen.Generate(ctx, "https://example.com/")
		require.NoError(t, err)
		assert.Len(t, code, utils.CodeLength)
	})

	t.Run("FallsBackToDigestWhenExhausted", func(t *testing.T) {
		gen := &CodeGeneratorImpl{
			shortRepo: &stubShortLinkRepo{takenFn: func(string) bool { return true }},
			now:       func() int64 { return 42 },
		}
		code, err := gen.Generate(ctx, "https://example.com/dense")
		require.NoError(t, err)
		assert.Equal(t, digestCode("https://example.com/dense", 42), code)
	})
}
