package services

import (
	"strings"

	"github.com/mileusna/useragent"

	"github.com/amirphl/Kusanagi/models"
)

// ClientInfo is the parsed view of a visitor's user-agent string
type ClientInfo struct {
	DeviceType string
	Browser    string
	OS         string
}

// UserAgentParser classifies raw user-agent strings into device, browser, and OS
type UserAgentParser interface {
	Parse(rawUA string) ClientInfo
}

type UserAgentParserImpl struct{}

func NewUserAgentParser() UserAgentParser {
	return &UserAgentParserImpl{}
}

func (p *UserAgentParserImpl) Parse(rawUA string) ClientInfo {
	rawUA = strings.TrimSpace(rawUA)
	if rawUA == "" {
		return ClientInfo{DeviceType: models.DeviceTypeUnknown}
	}

	ua := useragent.Parse(rawUA)

	info := ClientInfo{
		DeviceType: models.DeviceTypeUnknown,
		Browser:    ua.Name,
		OS:         ua.OS,
	}
	switch {
	case ua.Mobile:
		info.DeviceType = models.DeviceTypeMobile
	case ua.Tablet:
		info.DeviceType = models.DeviceTypeTablet
	case ua.Desktop:
		info.DeviceType = models.DeviceTypeDesktop
	}
	return info
}
