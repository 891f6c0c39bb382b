// FilePath: internal/pulseservice/pulseservice.go
package pulseservice

import (
	"math"
	"time"

	"github.com/buzzpulse/core/internal/config"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/repository"
)

// PulseService contains all repositories and service-wide dependencies
type PulseService struct {
	Devices   repository.DeviceRepository
	Cells     repository.CellRepository
	Presence  repository.PresenceRepository
	Hits      repository.HitRepository
	Vibes     repository.VibeRepository
	Buildings repository.BuildingRepository

	cfg config.PresenceConfig

	// Now is the clock for decay, presence windows, replay checks and
	// hour bucketing. Tests replace it to control time.
	Now func() time.Time
}

// New creates a new PulseService instance
func New(
	devices repository.DeviceRepository,
	cells repository.CellRepository,
	presence repository.PresenceRepository,
	hits repository.HitRepository,
	vibes repository.VibeRepository,
	buildings repository.BuildingRepository,
	cfg config.PresenceConfig,
) *PulseService {
	return &PulseService{
		Devices:   devices,
		Cells:     cells,
		Presence:  presence,
		Hits:      hits,
		Vibes:     vibes,
		Buildings: buildings,
		cfg:       cfg,
		Now:       time.Now,
	}
}

// Validate checks if all required repositories are initialized
func (s *PulseService) Validate() error {
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Cells == nil {
		return ErrMissingRepository("cells")
	}
	if s.Presence == nil {
		return ErrMissingRepository("presence")
	}
	if s.Hits == nil {
		return ErrMissingRepository("hits")
	}
	if s.Vibes == nil {
		return ErrMissingRepository("vibes")
	}
	if s.Buildings == nil {
		return ErrMissingRepository("buildings")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// tau converts the configured half-life into the exponential time
// constant: exp(-halfLife/tau) == 0.5.
func (s *PulseService) tau() float64 {
	return s.cfg.HalfLife.Seconds() / math.Ln2
}

// decayedScore evaluates the stored score at a later instant without
// folding in a new hit. Elapsed time is clamped at zero so an out-of-order
// read never inflates the score.
func decayedScore(score float64, lastTS, now time.Time, tau float64) float64 {
	dt := now.Sub(lastTS).Seconds()
	if dt <= 0 {
		return score
	}
	return score * math.Exp(-dt/tau)
}

// hourBucket truncates to the UTC clock hour that keys vibe uniqueness.
func hourBucket(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
