// FilePath: api/middleware/api.middleware.auth.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/pulseservice"
	nuts "github.com/vaudience/go-nuts"
)

// Signature headers. The signature covers deviceId.timestamp.rawBody.secret.
const (
	HeaderDeviceID  = "x-device-id"
	HeaderTimestamp = "x-timestamp"
	HeaderSignature = "x-signature"
)

type contextKey string

const deviceIDKey contextKey = "deviceID"

// DeviceAuthMiddleware verifies signed device requests against the stored
// device secrets.
type DeviceAuthMiddleware struct {
	service *pulseservice.PulseService
}

func NewDeviceAuthMiddleware(svc *pulseservice.PulseService) *DeviceAuthMiddleware {
	return &DeviceAuthMiddleware{service: svc}
}

// Authenticate rejects any request without a valid device signature. The
// raw body is consumed for verification and restored for the handler.
func (m *DeviceAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := readAndRestoreBody(r)
		if err != nil {
			handleError(w, errors.NewValidationError("failed to read request body", err))
			return
		}

		deviceID, err := m.service.AuthenticateRequest(
			r.Context(),
			r.Header.Get(HeaderDeviceID),
			r.Header.Get(HeaderTimestamp),
			r.Header.Get(HeaderSignature),
			body,
		)
		if err != nil {
			handleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withDeviceID(r.Context(), deviceID)))
	})
}

// Optional verifies the signature when the headers are present but never
// rejects; unauthenticated requests proceed with an empty device id.
func (m *DeviceAuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := readAndRestoreBody(r)
		if err != nil {
			handleError(w, errors.NewValidationError("failed to read request body", err))
			return
		}

		deviceID := m.service.OptionalAuthenticate(
			r.Context(),
			r.Header.Get(HeaderDeviceID),
			r.Header.Get(HeaderTimestamp),
			r.Header.Get(HeaderSignature),
			body,
		)

		next.ServeHTTP(w, r.WithContext(withDeviceID(r.Context(), deviceID)))
	})
}

func withDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey, deviceID)
}

// GetDeviceID returns the authenticated device id from the request context,
// or "" when the request was not (or only optionally) authenticated.
func GetDeviceID(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDKey).(string); ok {
		return id
	}
	return ""
}

func readAndRestoreBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return string(raw), nil
}

func handleError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.NewInternalError("internal server error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Code)
	json.NewEncoder(w).Encode(apiErr)
	nuts.L.Warnf("[AuthMiddleware] %s", apiErr.Error())
}
