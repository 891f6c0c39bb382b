// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/buzzpulse/core/internal/cache"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Ingest      *IngestHandlers
	Heat        *HeatHandlers
	Stats       *StatsHandlers
	Vibes       *VibeHandlers
	Buildings   *BuildingHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance. heatCache may be nil; the
// heat endpoint then answers straight from the service.
func NewResources(svc *pulseservice.PulseService, heatCache *cache.HeatCache) *Resources {
	return &Resources{
		Devices:   &DeviceHandlers{service: svc},
		Ingest:    &IngestHandlers{service: svc},
		Heat:      &HeatHandlers{service: svc, cache: heatCache},
		Stats:     &StatsHandlers{service: svc},
		Vibes:     &VibeHandlers{service: svc},
		Buildings: &BuildingHandlers{service: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// Helper functions

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondWithServiceError maps a service error onto the wire, preserving
// the status code when the service already classified it.
func respondWithServiceError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("internal server error", err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
