// Package model defines the data structures used throughout the application.
//
// Cultivars and care logs are plain structs. A CareLog refers to its owner by
// CultivarID only; the owning Cultivar is fetched by lookup when needed.
package model

import "time"

// DateLayout is the ISO calendar-date form used for every date field, in
// forms, in the database and in exports.
const DateLayout = time.DateOnly

// Cultivar is a named plant variety with descriptive attributes.
//
// Optional text fields use the empty string for "absent"; the store writes
// them as NULL.
type Cultivar struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	FlowerColor     string     `json:"flowerColor,omitempty"`
	LeafDescription string     `json:"leafDescription,omitempty"`
	AcquisitionDate *time.Time `json:"acquisitionDate,omitempty"`
	LightLevel      string     `json:"lightLevel,omitempty"`
	SoilMix         string     `json:"soilMix,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CultivarSummary is one row of the list view: a cultivar plus the date of
// its most recent care log, nil when it has none.
type CultivarSummary struct {
	Cultivar
	LatestCare *time.Time `json:"latestCare,omitempty"`
}

// DateOf truncates t to its calendar date (midnight UTC of t's local day),
// the representation all date fields use.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD, or "" for a nil date.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
