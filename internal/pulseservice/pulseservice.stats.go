// FilePath: internal/pulseservice/pulseservice.stats.go
package pulseservice

import (
	"context"
	"time"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CellStats assembles the per-cell detail view: read-time decayed score,
// last-hour hit count, the 7-day same-hour-of-day baseline and its delta,
// live presence, and the last hour's reaction tallies. deviceID may be
// empty; when a verified identity is supplied the caller's own
// current-hour reaction is attached.
func (s *PulseService) CellStats(ctx context.Context, cellID models.CellID, deviceID string) (*models.CellStats, error) {
	now := s.Now()
	stats := &models.CellStats{
		OK:     true,
		CellID: cellID.Value,
		Vibes:  []models.VibeTally{},
	}

	if cellID.Kind == models.CellKindBuilding {
		building, err := s.Buildings.Get(ctx, cellID.Slug())
		if err == nil {
			stats.BuildingName = building.Name
		} else if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	// A cell nobody has hit yet reports zeroes rather than 404: the map
	// detail view opens before the first ingest lands.
	cell, err := s.Cells.Get(ctx, cellID.Value)
	if err == nil {
		stats.Score = decayedScore(cell.Score, cell.LastTS, now, s.tau())
		stats.LastTS = cell.LastTS.Unix()
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	lastHour, err := s.Hits.CountForCell(ctx, cellID.Value, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	stats.LastHourHits = lastHour

	typical, err := s.Hits.TypicalHourAverage(ctx, cellID.Value, now)
	if err != nil {
		return nil, err
	}
	stats.TypicalHits = typical
	stats.Delta = float64(lastHour) - typical

	presence, err := s.Presence.CountForCell(ctx, cellID.Value, now.Add(-s.cfg.Window))
	if err != nil {
		return nil, err
	}
	stats.CurrentPresence = presence

	tallies, err := s.Vibes.TallySince(ctx, cellID.Value, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	stats.Vibes = tallies

	if deviceID != "" {
		vibe, err := s.Vibes.GetForHour(ctx, cellID.Value, deviceID, hourBucket(now))
		if err == nil {
			stats.MyVibe = vibe.Vibe
		} else if !errors.IsNotFound(err) {
			nuts.L.Warnf("[StatsService] Failed to load own vibe for %s: %v", deviceID, err)
		}
	}

	return stats, nil
}
