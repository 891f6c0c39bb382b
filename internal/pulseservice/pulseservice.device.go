// FilePath: internal/pulseservice/pulseservice.device.go
package pulseservice

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	"github.com/google/uuid"
	nuts "github.com/vaudience/go-nuts"
)

// RegisterDevice issues a fresh anonymous identity: a UUID device id and a
// random 256-bit secret. The secret is handed out exactly once; only the
// stored copy can verify future signatures.
func (s *PulseService) RegisterDevice(ctx context.Context) (*models.Device, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.NewInternalError("failed to generate device secret", err)
	}

	now := s.Now()
	device := &models.Device{
		ID:        uuid.NewString(),
		Secret:    base64.StdEncoding.EncodeToString(raw),
		CreatedAt: now,
		LastSeen:  now,
	}

	if err := s.Devices.Create(ctx, device); err != nil {
		return nil, err
	}

	nuts.L.Infof("[DeviceService] Registered device %s", device.ID)
	return device, nil
}

// Signature computes the request signature for a device credential:
// lowercase hex of SHA-256 over deviceId.timestamp.body.secret.
func Signature(deviceID string, timestamp int64, body, secret string) string {
	payload := fmt.Sprintf("%s.%d.%s.%s", deviceID, timestamp, body, secret)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// AuthenticateRequest verifies a signed request and returns the device id.
// It requires all three header values, a timestamp within the replay
// window, a known enabled device, and a matching signature. Every failure
// collapses into the same Unauthorized error so the response never reveals
// which check tripped.
func (s *PulseService) AuthenticateRequest(ctx context.Context, deviceID, timestamp, signature, body string) (string, error) {
	unauthorized := func(err error) (string, error) {
		return "", errors.NewAuthError("unauthorized", err)
	}

	if deviceID == "" || timestamp == "" || signature == "" {
		return unauthorized(nil)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return unauthorized(err)
	}

	now := s.Now()
	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if float64(skew) > s.cfg.ReplayWindow.Seconds() {
		return unauthorized(fmt.Errorf("timestamp outside replay window"))
	}

	device, err := s.Devices.Get(ctx, deviceID)
	if err != nil {
		return unauthorized(err)
	}
	if device.Disabled {
		return unauthorized(fmt.Errorf("device disabled"))
	}

	expected := Signature(deviceID, ts, body, device.Secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return unauthorized(fmt.Errorf("signature mismatch"))
	}

	if err := s.Devices.UpdateLastSeen(ctx, deviceID, now); err != nil {
		nuts.L.Warnf("[DeviceService] Failed to update last seen for %s: %v", deviceID, err)
	}

	return deviceID, nil
}

// OptionalAuthenticate is the advisory variant: any failure yields an
// empty identity instead of an error.
func (s *PulseService) OptionalAuthenticate(ctx context.Context, deviceID, timestamp, signature, body string) string {
	id, err := s.AuthenticateRequest(ctx, deviceID, timestamp, signature, body)
	if err != nil {
		return ""
	}
	return id
}
