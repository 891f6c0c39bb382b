// FilePath: internal/models/models.vibe.go
package models

import "time"

// Vibe is a per-device reaction to a building, unique per clock hour.
// Resubmission within the same hour overwrites value and timestamp.
type Vibe struct {
	CellID   string    `json:"cell_id" db:"cell_id"`
	DeviceID string    `json:"device_id" db:"device_id"`
	Vibe     string    `json:"vibe" db:"vibe"`
	TS       time.Time `json:"ts" db:"ts"`
	Hour     time.Time `json:"hour" db:"hour"`
}

// VibeTally is an aggregated reaction count for one vibe value.
type VibeTally struct {
	Vibe  string `json:"vibe" db:"vibe"`
	Count int64  `json:"count" db:"count"`
}
