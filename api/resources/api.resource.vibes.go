// FilePath: api/resources/api.resource.vibes.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/buzzpulse/core/api/middleware"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// VibeHandlers encapsulates the reaction HTTP handlers
type VibeHandlers struct {
	service *pulseservice.PulseService
}

// vibeRequest may carry a cellId, but the server ignores it: the reaction
// lands on whatever building the device's verified presence says.
type vibeRequest struct {
	CellID string `json:"cellId"`
	Vibe   string `json:"vibe"`
}

type vibeResponse struct {
	OK     bool   `json:"ok"`
	CellID string `json:"cellId"`
	Vibe   string `json:"vibe"`
}

// @Summary Submit a reaction
// @Description Record a one-per-hour reaction for the caller's current building. Requires presence within the window.
// @Tags vibes
// @Accept json
// @Produce json
// @Param reaction body vibeRequest true "Reaction"
// @Success 200 {object} vibeResponse
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Failure 403 {object} errors.APIError
// @Router /vibe [post]
// @Security DeviceSignature
func (h *VibeHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := middleware.GetDeviceID(r.Context())

	var req vibeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	record, err := h.service.SubmitVibe(r.Context(), deviceID, req.Vibe)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, vibeResponse{
		OK:     true,
		CellID: record.CellID,
		Vibe:   record.Vibe,
	})
}
