// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/buzzpulse/core/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	// vibeRetention keeps reactions long enough for the typical-hour
	// baseline's seven-day lookback.
	vibeRetention = 7 * 24 * time.Hour
	// presenceIdleCutoff drops presence rows for devices that have gone
	// quiet; they only matter inside the presence window, a day is ample.
	presenceIdleCutoff = 24 * time.Hour
)

// CleanupService prunes aged rows across the stores. The hits hypertable
// also carries a database-side retention policy; this sweeper backs it up
// and owns the tables the policy cannot reach.
type CleanupService struct {
	hits      repository.HitRepository
	vibes     repository.VibeRepository
	presence  repository.PresenceRepository
	retention time.Duration
	events    *nuts.EventEmitter
}

// New creates a new CleanupService. retention is the hit log horizon.
func New(
	hits repository.HitRepository,
	vibes repository.VibeRepository,
	presence repository.PresenceRepository,
	retention time.Duration,
) *CleanupService {
	return &CleanupService{
		hits:      hits,
		vibes:     vibes,
		presence:  presence,
		retention: retention,
		events:    nuts.NewEventEmitter(),
	}
}

// Run sweeps on the given interval until ctx is cancelled.
func (s *CleanupService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	nuts.L.Infof("[Cleanup] Sweeper running every %v, hit retention %v", interval, s.retention)
	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[Cleanup] Sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				nuts.L.Errorf("[Cleanup] Sweep failed: %v", err)
			}
		}
	}
}

// Sweep runs one pruning pass over hits, vibes, and presence.
func (s *CleanupService) Sweep(ctx context.Context) error {
	now := time.Now()

	deleted, err := s.hits.DeleteBefore(ctx, now.Add(-s.retention))
	if err != nil {
		return fmt.Errorf("failed to prune hits: %w", err)
	}
	if deleted > 0 {
		s.events.Emit("hits.pruned", deleted)
	}

	deleted, err = s.vibes.DeleteBefore(ctx, now.Add(-vibeRetention))
	if err != nil {
		return fmt.Errorf("failed to prune vibes: %w", err)
	}
	if deleted > 0 {
		s.events.Emit("vibes.pruned", deleted)
	}

	deleted, err = s.presence.DeleteIdle(ctx, now.Add(-presenceIdleCutoff))
	if err != nil {
		return fmt.Errorf("failed to prune presence: %w", err)
	}
	if deleted > 0 {
		s.events.Emit("presence.pruned", deleted)
	}

	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(deleted int64)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if deleted, ok := args[0].(int64); ok {
				handler(deleted)
			}
		}
	})
}
