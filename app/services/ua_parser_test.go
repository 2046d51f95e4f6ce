package services

import (
	"testing"

	"github.com/amirphl/Kusanagi/models"
	"github.com/stretchr/testify/assert"
)

func TestUserAgentParser(t *testing.T) {
	p := NewUserAgentParser()

	t.Run("Desktop", func(t *testing.T) {
		info := p.Parse("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, models.DeviceTypeDesktop, info.DeviceType)
		assert.Equal(t, "Chrome", info.Browser)
		assert.Equal(t, "Windows", info.OS)
	})

	t.Run("Mobile", func(t *testing.T) {
		info := p.Parse("Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, models.DeviceTypeMobile, info.DeviceType)
	})

	t.Run("Tablet", func(t *testing.T) {
		info := p.Parse("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, models.DeviceTypeTablet, info.DeviceType)
	})

	t.Run("Empty", func(t *testing.T) {
		info := p.Parse("")
		assert.Equal(t, models.DeviceTypeUnknown, info.DeviceType)
		assert.Empty(t, info.Browser)
		assert.Empty(t, info.OS)
	})

	t.Run("Garbage", func(t *testing.T) {
		info := p.Parse("definitely not a user agent")
		assert.Equal(t, models.DeviceTypeUnknown, info.DeviceType)
	})
}
