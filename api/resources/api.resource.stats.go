// FilePath: api/resources/api.resource.stats.go
package resources

import (
	"net/http"

	"github.com/buzzpulse/core/api/middleware"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// StatsHandlers encapsulates the per-cell stats HTTP handlers
type StatsHandlers struct {
	service *pulseservice.PulseService
}

// @Summary Get stats for a cell
// @Description Return score, hit counts, the typical-hour baseline, presence, and reaction tallies for one cell. With a valid signature the caller's own current-hour reaction is included.
// @Tags stats
// @Produce json
// @Param cellId query string true "Cell id (geohash or b:slug)"
// @Success 200 {object} models.CellStats
// @Failure 400 {object} errors.APIError
// @Router /stats [get]
func (h *StatsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query models.StatsQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	cellID, ok := models.ParseCellID(query.CellID)
	if !ok {
		respondWithError(w, errors.NewValidationError("invalid cellId", nil).WithRequestID(requestID))
		return
	}

	stats, err := h.service.CellStats(r.Context(), cellID, middleware.GetDeviceID(r.Context()))
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
