package businessflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasValidator(t *testing.T) {
	ctx := context.Background()

	free := NewAliasValidator(&stubShortLinkRepo{takenFn: func(string) bool { return false }})

	t.Run("ValidAlias", func(t *testing.T) {
		require.NoError(t, free.Validate(ctx, "my-link"))
		require.NoError(t, free.Validate(ctx, "Camp_2026"))
		require.NoError(t, free.Validate(ctx, "abc"))
	})

	t.Run("TooShort", func(t *testing.T) {
		err := free.Validate(ctx, "ab")
		assert.True(t, IsInvalidAlias(err))
	})

	t.Run("TooLong", func(t *testing.T) {
		err := free.Validate(ctx, strings.Repeat("a", 51))
		assert.True(t, IsInvalidAlias(err))
	})

	t.Run("InvalidCharacters", func(t *testing.T) {
		for _, alias := range []string{"has space", "sem;colon", "sla/sh", "uniçode", "dot.ted"} {
			err := free.Validate(ctx, alias)
			assert.True(t, IsInvalidAlias(err), "alias %q should be rejected", alias)
		}
	})

	t.Run("ReservedWords", func(t *testing.T) {
		for _, alias := range []string{"admin", "api", "stats", "login"} {
			err := free.Validate(ctx, alias)
			assert.True(t, IsInvalidAlias(err), "alias %q should be reserved", alias)
		}
	})

	t.Run("ReservedWordsCaseInsensitive", func(t *testing.T) {
		err := free.Validate(ctx, "Admin")
		assert.True(t, IsInvalidAlias(err))
	})

	t.Run("AliasTaken", func(t *testing.T) {
		taken := NewAliasValidator(&stubShortLinkRepo{takenFn: func(string) bool { return true }})
		err := taken.Validate(ctx, "occupied")
		assert.True(t, IsAliasTaken(err))
	})
}
