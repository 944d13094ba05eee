package model

import "time"

// DefaultCareAction is recorded when a care log is submitted without an action.
const DefaultCareAction = "Care"

// CareLog is a dated record of a care action performed on a cultivar.
type CareLog struct {
	ID          string    `json:"id"`
	CultivarID  string    `json:"cultivarId"`
	PerformedOn time.Time `json:"performedOn"`
	Action      string    `json:"action"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CareHistoryEntry is a care log joined with its cultivar's name, used when
// exporting the whole history.
type CareHistoryEntry struct {
	CareLog
	CultivarName string `json:"cultivarName"`
}
