// FilePath: api/middleware/api.middleware.auth_test.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buzzpulse/core/internal/config"
	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	"github.com/buzzpulse/core/internal/pulseservice"
)

type stubDeviceRepo struct {
	device *models.Device
}

func (stubDeviceRepo) BeginTx(ctx context.Context) (database.Transaction, error) { return nil, nil }

func (r stubDeviceRepo) Create(ctx context.Context, device *models.Device) error { return nil }

func (r stubDeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	if r.device != nil && r.device.ID == id {
		copied := *r.device
		return &copied, nil
	}
	return nil, errors.NewNotFoundError("device not found", nil)
}

func (r stubDeviceRepo) UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error {
	return nil
}

func (r stubDeviceRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	return nil
}

func newAuthFixture() (*DeviceAuthMiddleware, *models.Device, time.Time) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	device := &models.Device{ID: "dev-1", Secret: "s3cret", CreatedAt: now, LastSeen: now}
	svc := pulseservice.New(
		stubDeviceRepo{device: device}, nil, nil, nil, nil, nil,
		config.PresenceConfig{ReplayWindow: 300 * time.Second},
	)
	svc.Now = func() time.Time { return now }
	return NewDeviceAuthMiddleware(svc), device, now
}

func signedRequest(device *models.Device, now time.Time, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	ts := now.Unix()
	r.Header.Set(HeaderDeviceID, device.ID)
	r.Header.Set(HeaderTimestamp, fmt.Sprint(ts))
	r.Header.Set(HeaderSignature, pulseservice.Signature(device.ID, ts, body, device.Secret))
	return r
}

func TestAuthenticatePassesDeviceID(t *testing.T) {
	auth, device, now := newAuthFixture()

	var gotDeviceID, gotBody string
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeviceID = GetDeviceID(r.Context())
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
	}))

	body := `{"cellId":"b:eng-quad"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(device, now, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotDeviceID != device.ID {
		t.Errorf("device id in context = %q, want %q", gotDeviceID, device.ID)
	}
	if gotBody != body {
		t.Errorf("handler read body %q, want the original %q", gotBody, body)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	auth, device, now := newAuthFixture()

	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached on a rejected request")
	}))

	tests := []struct {
		name    string
		request *http.Request
	}{
		{"no headers", httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader("{}"))},
		{"tampered body", func() *http.Request {
			r := signedRequest(device, now, `{"cellId":"b:eng-quad"}`)
			r.Body = httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"cellId":"b:main-quad"}`)).Body
			return r
		}()},
		{"wrong secret", func() *http.Request {
			forged := *device
			forged.Secret = "guess"
			return signedRequest(&forged, now, "{}")
		}()},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, tc.request)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: content type = %q, want application/json", tc.name, ct)
		}
	}
}

func TestOptionalNeverRejects(t *testing.T) {
	auth, device, now := newAuthFixture()

	var gotDeviceID string
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeviceID = GetDeviceID(r.Context())
	}))

	// Unsigned request passes with an empty identity.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?cellId=b:eng-quad", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unsigned status = %d, want 200", rec.Code)
	}
	if gotDeviceID != "" {
		t.Errorf("unsigned device id = %q, want empty", gotDeviceID)
	}

	// A valid signature is recognized.
	r := httptest.NewRequest(http.MethodGet, "/stats?cellId=b:eng-quad", nil)
	ts := now.Unix()
	r.Header.Set(HeaderDeviceID, device.ID)
	r.Header.Set(HeaderTimestamp, fmt.Sprint(ts))
	r.Header.Set(HeaderSignature, pulseservice.Signature(device.ID, ts, "", device.Secret))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if gotDeviceID != device.ID {
		t.Errorf("signed device id = %q, want %q", gotDeviceID, device.ID)
	}
}

func TestGetDeviceIDWithoutContext(t *testing.T) {
	if got := GetDeviceID(context.Background()); got != "" {
		t.Errorf("GetDeviceID on a bare context = %q, want empty", got)
	}
}
