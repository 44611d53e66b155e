package domain

import "time"

// Unknown is stored for any location field that could not be resolved
const Unknown = "Unknown"

// Location is the enriched network origin of a visit
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	IP      string `json:"ip"`
	Company string `json:"company"`
}

// UnknownLocation returns a location with every field set to Unknown
func UnknownLocation() Location {
	return Location{Country: Unknown, Region: Unknown, City: Unknown, IP: Unknown, Company: Unknown}
}

// Normalize replaces empty fields with Unknown
func (l Location) Normalize() Location {
	for _, f := range []*string{&l.Country, &l.Region, &l.City, &l.IP, &l.Company} {
		if *f == "" {
			*f = Unknown
		}
	}
	return l
}

// ClickEvent represents one recorded visit of a link
type ClickEvent struct {
	ID        string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	IP        string    `json:"ip"`
	Company   string    `json:"company"`
}

// NewClickEvent stamps a location with the time of the visit
func NewClickEvent(at time.Time, loc Location) ClickEvent {
	loc = loc.Normalize()
	return ClickEvent{
		Timestamp: at,
		Country:   loc.Country,
		Region:    loc.Region,
		City:      loc.City,
		IP:        loc.IP,
		Company:   loc.Company,
	}
}
