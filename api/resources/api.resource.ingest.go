// FilePath: api/resources/api.resource.ingest.go
package resources

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/buzzpulse/core/api/middleware"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// IngestHandlers encapsulates the location report HTTP handlers
type IngestHandlers struct {
	service *pulseservice.PulseService
}

// ingestRequest is a signed location report. Ts is epoch seconds and
// optional; a pointer so absence is distinguishable from zero.
type ingestRequest struct {
	CellID string   `json:"cellId"`
	Ts     *float64 `json:"ts"`
}

// @Summary Report presence in a cell
// @Description Record a signed location hit, bumping the cell score and moving the device's presence.
// @Tags ingest
// @Accept json
// @Produce json
// @Param report body ingestRequest true "Location report"
// @Success 200 {object} models.IngestResult
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /ingest [post]
// @Security DeviceSignature
func (h *IngestHandlers) Ingest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	deviceID := middleware.GetDeviceID(r.Context())

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	cellID, ok := models.ParseCellID(req.CellID)
	if !ok {
		respondWithError(w, errors.NewValidationError("invalid cellId", nil).WithRequestID(requestID))
		return
	}

	// Client clocks are unreliable: absent or non-finite timestamps fall
	// back to server time, and the decay math clamps regressions anyway.
	ts := h.service.Now()
	if req.Ts != nil && !math.IsNaN(*req.Ts) && !math.IsInf(*req.Ts, 0) {
		ts = time.Unix(int64(*req.Ts), 0)
	}

	result, err := h.service.RecordHit(r.Context(), deviceID, cellID, ts)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
