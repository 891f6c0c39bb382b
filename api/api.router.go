// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/buzzpulse/core/api/middleware"
	"github.com/buzzpulse/core/api/resources"
	"github.com/buzzpulse/core/internal/cache"
	"github.com/buzzpulse/core/internal/pulseservice"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.DeviceAuthMiddleware
	resources *resources.Resources
}

func NewRouter(svc *pulseservice.PulseService, heatCache *cache.HeatCache) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewDeviceAuthMiddleware(svc),
		resources: resources.NewResources(svc, heatCache),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Public routes
	r.router.HandleFunc("/health", r.handleHealth).Methods(http.MethodGet)
	r.router.HandleFunc("/device/register", r.resources.Devices.Register).Methods(http.MethodPost)
	r.router.HandleFunc("/heat", r.resources.Heat.Query).Methods(http.MethodGet)
	r.router.HandleFunc("/buildings", r.resources.Buildings.List).Methods(http.MethodGet)

	// Stats is public but recognizes a signature when one is supplied.
	r.router.Handle("/stats", r.auth.Optional(http.HandlerFunc(r.resources.Stats.Get))).Methods(http.MethodGet)

	// Signed routes
	r.router.Handle("/ingest", r.auth.Authenticate(http.HandlerFunc(r.resources.Ingest.Ingest))).Methods(http.MethodPost)
	r.router.Handle("/vibe", r.auth.Authenticate(http.HandlerFunc(r.resources.Vibes.Submit))).Methods(http.MethodPost)
}

// SetHealthCheck installs a health handler with real dependency probes;
// without one /health answers with a static ok.
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if r.resources.HealthCheck != nil {
		r.resources.HealthCheck(w, req)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"ok":true}`))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
