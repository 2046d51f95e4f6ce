package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLNormalizer(t *testing.T) {
	n := NewURLNormalizer()

	t.Run("KeepsValidURL", func(t *testing.T) {
		out, err := n.Normalize("https://example.com/path?q=1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/path?q=1", out)
	})

	t.Run("DefaultsToHTTPS", func(t *testing.T) {
		out, err := n.Normalize("example.com/path")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/path", out)
	})

	t.Run("KeepsHTTP", func(t *testing.T) {
		out, err := n.Normalize("http://example.com/")
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/", out)
	})

	t.Run("LowercasesHost", func(t *testing.T) {
		out, err := n.Normalize("https://EXAMPLE.Com/Path")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/Path", out)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		out, err := n.Normalize("  https://example.com/  ")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", out)
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		_, err := n.Normalize("")
		assert.ErrorIs(t, err, ErrInvalidURL)

		_, err = n.Normalize("   ")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("RejectsMissingHost", func(t *testing.T) {
		_, err := n.Normalize("https:///nohost")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", HostOf("https://example.com/path"))
	assert.Equal(t, "example.com", HostOf("https://example.com:8443/path"))
	assert.Equal(t, "", HostOf("://broken"))
}
