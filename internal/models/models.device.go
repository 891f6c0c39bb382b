// FilePath: internal/models/models.device.go
package models

import "time"

// Device is an anonymous per-device credential. Secret is returned exactly
// once at registration and never leaves the server again.
type Device struct {
	ID        string    `json:"id" db:"id"`
	Secret    string    `json:"-" db:"secret"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
	Disabled  bool      `json:"disabled" db:"disabled"`
}

// DevicePresence is the single most-recent cell report per device. Live
// presence for a cell counts rows whose UpdatedTS falls inside the
// presence window.
type DevicePresence struct {
	DeviceID  string    `json:"device_id" db:"device_id"`
	CellID    string    `json:"cell_id" db:"cell_id"`
	UpdatedTS time.Time `json:"updated_ts" db:"updated_ts"`
}
