package domain

import "time"

// NetworkMeta is the request metadata used to locate a visitor
type NetworkMeta struct {
	ForwardedFor string // raw X-Forwarded-For list
	RealIP       string
	Country      string // proxy provided hints
	Region       string
	City         string
	Network      string
}

// Visit is one inbound request on a short link
type Visit struct {
	Slug      string
	UserAgent string
	Network   NetworkMeta
	At        time.Time
}

// Bucket is one point of a click time series
type Bucket struct {
	Time   string    `json:"time"`
	Start  time.Time `json:"start"`
	Clicks int       `json:"clicks"`
}

// HourCount is the number of clicks in one hour of the day
type HourCount struct {
	Hour   string `json:"hour"`
	Clicks int    `json:"clicks"`
}

// CountryCount is the number of clicks from one country
type CountryCount struct {
	Country string `json:"country"`
	Clicks  int64  `json:"clicks"`
}

// TagCount is the number of in-range clicks for one tag across all links
type TagCount struct {
	Tag    string `json:"tag"`
	RawTag Tag    `json:"rawTag"`
	Clicks int    `json:"clicks"`
}

// LinkStats represents the dashboard view of a single link
type LinkStats struct {
	Slug         string         `json:"slug"`
	URL          string         `json:"url"`
	Tag          Tag            `json:"tag"`
	Range        string         `json:"range"`
	RangeClicks  int            `json:"rangeClicks"`
	TotalClicks  int64          `json:"totalClicks"`
	Series       []Bucket       `json:"series"`
	PeakHours    []HourCount    `json:"peakHours"`
	Countries    []CountryCount `json:"countries"`
	TopCountry   *CountryCount  `json:"topCountry,omitempty"`
	RecentClicks []ClickEvent   `json:"recentClicks"`
}
