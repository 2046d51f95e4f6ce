package dto

// DailyClicksDTO is one calendar-day bucket in a link's click history
type DailyClicksDTO struct {
	Day    string `json:"day"`
	Clicks int64  `json:"clicks"`
}

// LabelCountDTO is one grouped count keyed by browser or country
type LabelCountDTO struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// LinkAnalyticsResponse is the per-link rollup over the requested window
type LinkAnalyticsResponse struct {
	Message      string           `json:"message"`
	Code         string           `json:"code"`
	CustomAlias  *string          `json:"custom_alias,omitempty"`
	WindowDays   int              `json:"window_days"`
	TotalClicks  int64            `json:"total_clicks"`
	WindowClicks int64            `json:"window_clicks"`
	DailyClicks  []DailyClicksDTO `json:"daily_clicks"`
	Devices      map[string]int64 `json:"devices"`
	TopBrowsers  []LabelCountDTO  `json:"top_browsers"`
	TopCountries []LabelCountDTO  `json:"top_countries"`
}
