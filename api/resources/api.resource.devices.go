// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"net/http"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device registration HTTP handlers
type DeviceHandlers struct {
	service *pulseservice.PulseService
}

// registerResponse is the only place a device secret ever crosses the wire.
type registerResponse struct {
	OK       bool   `json:"ok"`
	DeviceID string `json:"deviceId"`
	Secret   string `json:"secret"`
}

// @Summary Register an anonymous device
// @Description Issue a fresh device id and signing secret. The secret is returned exactly once and never again.
// @Tags devices
// @Produce json
// @Success 200 {object} registerResponse
// @Failure 500 {object} errors.APIError
// @Router /device/register [post]
func (h *DeviceHandlers) Register(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	device, err := h.service.RegisterDevice(r.Context())
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to register device", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, registerResponse{
		OK:       true,
		DeviceID: device.ID,
		Secret:   device.Secret,
	})
}
