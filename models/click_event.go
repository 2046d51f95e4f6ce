package models

import "time"

// Device type values derived from the user-agent string
const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeTablet  = "tablet"
	DeviceTypeDesktop = "desktop"
	DeviceTypeUnknown = "unknown"
)

// ClickEvent records a single redirect through a short link
// Rows are append-only: never updated or deleted by normal operation
// UserAgent is truncated to 1000 and Referer to 2000 characters before insert
type ClickEvent struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ShortLinkID uint    `gorm:"not null;index:idx_click_events_short_link_id,priority:1;index:idx_click_events_link_created,priority:1" json:"short_link_id"`
	IPAddress   string  `gorm:"size:64" json:"ip_address"`
	UserAgent   *string `gorm:"type:text" json:"user_agent,omitempty"`
	Referer     *string `gorm:"type:text" json:"referer,omitempty"`
	DeviceType  string  `gorm:"size:50" json:"device_type"`
	Browser     string  `gorm:"size:100" json:"browser"`
	OS          string  `gorm:"size:100" json:"os"`
	Country     string  `gorm:"size:100" json:"country"`
	City        string  `gorm:"size:100" json:"city"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_click_events_created_at;index:idx_click_events_link_created,priority:2" json:"created_at"`
}

// TableName returns the table name for ClickEvent
func (ClickEvent) TableName() string { return "click_events" }

// ClickEventFilter provides filter fields for repository queries
type ClickEventFilter struct {
	ShortLinkID   *uint
	Country       *string
	DeviceType    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
