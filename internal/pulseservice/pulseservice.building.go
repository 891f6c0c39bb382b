// FilePath: internal/pulseservice/pulseservice.building.go
package pulseservice

import (
	"context"

	"github.com/buzzpulse/core/internal/models"
)

// ListBuildings returns the registered check-in targets.
func (s *PulseService) ListBuildings(ctx context.Context) ([]*models.Building, error) {
	return s.Buildings.List(ctx)
}
