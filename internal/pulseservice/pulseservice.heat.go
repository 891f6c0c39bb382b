// FilePath: internal/pulseservice/pulseservice.heat.go
package pulseservice

import (
	"context"
	"time"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/geohash"
	"github.com/buzzpulse/core/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// HeatResult is the /heat response body.
type HeatResult struct {
	OK    bool               `json:"ok"`
	Count int                `json:"count"`
	Data  []models.HeatPoint `json:"data"`
}

// QueryHeat answers a bounding-box heat query. Cells pass only when their
// decayed score is positive and at least min distinct devices contributed
// hits within the lookback window; that floor is the k-anonymity gate, so
// a lone device can never be surfaced as a map point. Resolution happens
// before the bbox test: the filter is point-in-box on the resolved point,
// not a cell-polygon intersection, and edge-straddling cells follow their
// midpoint.
func (s *PulseService) QueryHeat(ctx context.Context, query models.HeatQuery) (*HeatResult, error) {
	bbox, err := models.ParseBBox(query.BBox)
	if err != nil {
		return nil, errors.NewValidationError("invalid bbox", err)
	}

	min := int64(query.Min)
	if min < 1 {
		min = 1
	}
	windowMinutes := query.Window
	if windowMinutes < 1 {
		if query.Window == 0 {
			windowMinutes = 30
		} else {
			windowMinutes = 1
		}
	}

	now := s.Now()
	since := now.Add(-time.Duration(windowMinutes) * time.Minute)

	cells, err := s.Cells.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	contributors, err := s.Hits.ContributorsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	tau := s.tau()
	debug := query.Debug == 1
	points := []models.HeatPoint{}

	for _, cell := range cells {
		if contributors[cell.CellID] < min {
			continue
		}

		score := decayedScore(cell.Score, cell.LastTS, now, tau)
		if score <= 0 {
			continue
		}

		point, ok := s.resolveCell(ctx, cell.CellID)
		if !ok {
			continue
		}
		if !bbox.Contains(point.Lat, point.Lng) {
			continue
		}

		point.Score = score
		if debug {
			point.CellID = cell.CellID
		}
		points = append(points, point)
	}

	return &HeatResult{OK: true, Count: len(points), Data: points}, nil
}

// resolveCell maps a cell id to its map point: geohash cells decode to
// their bisection midpoint with the precision radius, building cells use
// the registered coordinates with the fixed building radius. Cells that
// resolve to nothing (undecodable hash, unregistered building) are
// silently skipped.
func (s *PulseService) resolveCell(ctx context.Context, rawCellID string) (models.HeatPoint, bool) {
	cellID, ok := models.ParseCellID(rawCellID)
	if !ok {
		return models.HeatPoint{}, false
	}

	switch cellID.Kind {
	case models.CellKindBuilding:
		building, err := s.Buildings.Get(ctx, cellID.Slug())
		if err != nil {
			if !errors.IsNotFound(err) {
				nuts.L.Warnf("[HeatService] Failed to resolve building %s: %v", cellID.Slug(), err)
			}
			return models.HeatPoint{}, false
		}
		return models.HeatPoint{
			Lat:    building.Latitude,
			Lng:    building.Longitude,
			Radius: models.BuildingRadiusMeters,
		}, true
	default:
		lat, lng, err := geohash.Decode(cellID.Value)
		if err != nil {
			return models.HeatPoint{}, false
		}
		return models.HeatPoint{
			Lat:    lat,
			Lng:    lng,
			Radius: geohash.CellRadiusMeters(len(cellID.Value)),
		}, true
	}
}
