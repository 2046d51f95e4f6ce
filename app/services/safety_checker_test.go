package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafetyChecker(t *testing.T) {
	t.Run("DefaultBlocklist", func(t *testing.T) {
		s := NewSafetyChecker(nil)

		assert.True(t, s.IsSafe("https://example.com/page"))
		assert.False(t, s.IsSafe("https://bit.ly/abc"))
		assert.False(t, s.IsSafe("https://tinyurl.com/abc"))
		assert.False(t, s.IsSafe("https://www.bit.ly/abc"), "subdomains of blocked hosts are blocked too")
	})

	t.Run("CustomBlocklist", func(t *testing.T) {
		s := NewSafetyChecker([]string{"Evil.example "})

		assert.False(t, s.IsSafe("https://evil.example/x"))
		// Custom lists replace the defaults entirely
		assert.True(t, s.IsSafe("https://bit.ly/abc"))
	})

	t.Run("RejectsIPHosts", func(t *testing.T) {
		s := NewSafetyChecker(nil)

		assert.False(t, s.IsSafe("https://192.168.1.1/admin"))
		assert.False(t, s.IsSafe("http://10.0.0.1/"))
	})

	t.Run("RejectsRandomLookingHosts", func(t *testing.T) {
		s := NewSafetyChecker(nil)

		assert.False(t, s.IsSafe("https://x9f3k2m8q1z7w4r6t0y5u3.com/"))
		assert.True(t, s.IsSafe("https://legitimate-site.com/"))
	})

	t.Run("RejectsUnparseable", func(t *testing.T) {
		s := NewSafetyChecker(nil)

		assert.False(t, s.IsSafe("://broken"))
		assert.False(t, s.IsSafe(""))
	})
}
