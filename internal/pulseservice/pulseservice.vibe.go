// FilePath: internal/pulseservice/pulseservice.vibe.go
package pulseservice

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// maxVibeLen bounds a reaction value; reactions are single emoji or short
// tokens, anything longer is abuse.
const maxVibeLen = 16

// SubmitVibe records a reaction for the caller's current building. The
// claimed cell id in the request is ignored: the authoritative cell is
// whatever the device last reported, and that report must fall inside the
// presence window. Only building cells accept reactions. The stored row is
// keyed on (cell, device, clock hour); a resubmission within the hour
// overwrites.
func (s *PulseService) SubmitVibe(ctx context.Context, deviceID, vibe string) (*models.Vibe, error) {
	vibe = strings.TrimSpace(vibe)
	if vibe == "" || utf8.RuneCountInString(vibe) > maxVibeLen {
		return nil, errors.NewValidationError("invalid vibe", nil)
	}

	presence, err := s.Presence.Get(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthorizationError("not present", err)
		}
		return nil, err
	}

	now := s.Now()
	if presence.UpdatedTS.Before(now.Add(-s.cfg.Window)) {
		return nil, errors.NewAuthorizationError("not present", nil)
	}

	cellID, ok := models.ParseCellID(presence.CellID)
	if !ok || cellID.Kind != models.CellKindBuilding {
		return nil, errors.NewValidationError("invalid cell type for vibes", nil)
	}

	record := &models.Vibe{
		CellID:   cellID.Value,
		DeviceID: deviceID,
		Vibe:     vibe,
		TS:       now,
		Hour:     hourBucket(now),
	}
	if err := s.Vibes.Upsert(ctx, record); err != nil {
		return nil, err
	}

	nuts.L.Infof("[VibeService] Vibe %q for %s", vibe, cellID.Value)
	return record, nil
}
