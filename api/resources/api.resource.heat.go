// FilePath: api/resources/api.resource.heat.go
package resources

import (
	"net/http"

	"github.com/buzzpulse/core/internal/cache"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	"github.com/buzzpulse/core/internal/pulseservice"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// HeatHandlers encapsulates the heat map HTTP handlers
type HeatHandlers struct {
	service *pulseservice.PulseService
	cache   *cache.HeatCache
}

// @Summary Query the heat map
// @Description Return anonymized heat points inside a bounding box. Cells below the contributor floor are withheld.
// @Tags heat
// @Produce json
// @Param bbox query string true "west,south,east,north"
// @Param min query int false "Minimum distinct contributors per cell (floor 1)"
// @Param window query int false "Contributor lookback in minutes (default 30)"
// @Param debug query int false "Set to 1 to include cell ids"
// @Success 200 {object} pulseservice.HeatResult
// @Failure 400 {object} errors.APIError
// @Router /heat [get]
func (h *HeatHandlers) Query(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var query models.HeatQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	cacheKey := cache.Key(query.BBox, query.Min, query.Window, query.Debug)
	if h.cache != nil {
		var cached pulseservice.HeatResult
		if h.cache.Get(r.Context(), cacheKey, &cached) {
			respondWithJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, err := h.service.QueryHeat(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	if h.cache != nil {
		h.cache.Set(r.Context(), cacheKey, result)
	}
	respondWithJSON(w, http.StatusOK, result)
}
