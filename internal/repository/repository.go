// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceRepository defines the interface for device credential operations
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

// CellRepository defines the interface for the per-cell decay accumulator
type CellRepository interface {
	database.Repository
	// ApplyHit folds one hit into the cell score in a single atomic
	// statement: decay the stored score to ts using tau seconds, add 1,
	// advance last_ts. Returns the updated score.
	ApplyHit(ctx context.Context, cellID string, ts time.Time, tau float64) (float64, error)
	Get(ctx context.Context, cellID string) (*models.Cell, error)
	// ListActive returns every cell whose stored score is positive.
	ListActive(ctx context.Context) ([]*models.Cell, error)
}

// PresenceRepository defines the interface for the per-device latest-cell
// table
type PresenceRepository interface {
	database.Repository
	Upsert(ctx context.Context, deviceID, cellID string, ts time.Time) error
	Get(ctx context.Context, deviceID string) (*models.DevicePresence, error)
	CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error)
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

// HitRepository defines the interface for the append-only hit log
type HitRepository interface {
	database.Repository
	Insert(ctx context.Context, cellID, deviceID string, ts time.Time) error
	CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error)
	// ContributorsSince returns distinct contributing devices per cell for
	// hits at or after since. Cells with no hits in the window are absent.
	ContributorsSince(ctx context.Context, since time.Time) (map[string]int64, error)
	// TypicalHourAverage averages per-calendar-day hit counts over the
	// trailing seven days, restricted to hits whose hour-of-day matches
	// the hour of now.
	TypicalHourAverage(ctx context.Context, cellID string, now time.Time) (float64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// VibeRepository defines the interface for building reactions
type VibeRepository interface {
	database.Repository
	Upsert(ctx context.Context, vibe *models.Vibe) error
	TallySince(ctx context.Context, cellID string, since time.Time) ([]models.VibeTally, error)
	GetForHour(ctx context.Context, cellID, deviceID string, hour time.Time) (*models.Vibe, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// BuildingRepository defines the interface for the registered building map
type BuildingRepository interface {
	database.Repository
	Get(ctx context.Context, slug string) (*models.Building, error)
	List(ctx context.Context) ([]*models.Building, error)
	Upsert(ctx context.Context, building *models.Building) error
}
