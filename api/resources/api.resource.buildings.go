// FilePath: api/resources/api.resource.buildings.go
package resources

import (
	"net/http"

	"github.com/buzzpulse/core/internal/models"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// BuildingHandlers encapsulates the building registry HTTP handlers
type BuildingHandlers struct {
	service *pulseservice.PulseService
}

type buildingListResponse struct {
	OK   bool               `json:"ok"`
	Data []*models.Building `json:"data"`
}

// @Summary List registered buildings
// @Description Return the building registry so clients can offer named check-in targets.
// @Tags buildings
// @Produce json
// @Success 200 {object} buildingListResponse
// @Failure 500 {object} errors.APIError
// @Router /buildings [get]
func (h *BuildingHandlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	buildings, err := h.service.ListBuildings(r.Context())
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, buildingListResponse{OK: true, Data: buildings})
}
