// FilePath: internal/pulseservice/pulseservice.ingest.go
package pulseservice

import (
	"context"
	"time"

	"github.com/buzzpulse/core/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// RecordHit folds one presence signal into the aggregate state: the cell
// decay score, the device's presence row, and the append-only hit log.
// Exactly one hit row is appended per call.
func (s *PulseService) RecordHit(ctx context.Context, deviceID string, cellID models.CellID, ts time.Time) (*models.IngestResult, error) {
	score, err := s.Cells.ApplyHit(ctx, cellID.Value, ts, s.tau())
	if err != nil {
		return nil, err
	}

	if err := s.Presence.Upsert(ctx, deviceID, cellID.Value, ts); err != nil {
		return nil, err
	}

	if err := s.Hits.Insert(ctx, cellID.Value, deviceID, ts); err != nil {
		return nil, err
	}

	since := s.Now().Add(-s.cfg.Window)
	presence, err := s.Presence.CountForCell(ctx, cellID.Value, since)
	if err != nil {
		return nil, err
	}

	nuts.L.Infof("[IngestService] Hit %s score=%.3f presence=%d", cellID.Value, score, presence)

	return &models.IngestResult{
		OK:       true,
		CellID:   cellID.Value,
		TS:       ts.Unix(),
		Score:    score,
		Presence: presence,
	}, nil
}
