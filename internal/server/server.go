// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buzzpulse/core/api"
	"github.com/buzzpulse/core/internal/cache"
	"github.com/buzzpulse/core/internal/cleanup"
	"github.com/buzzpulse/core/internal/config"
	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/monitoring"
	"github.com/buzzpulse/core/internal/pulseservice"
	"github.com/buzzpulse/core/internal/repository/postgres"
	"github.com/buzzpulse/core/internal/repository/timescale"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// cleanupInterval is how often the retention sweeper runs.
const cleanupInterval = time.Hour

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	service    *pulseservice.PulseService
	cleanup    *cleanup.CleanupService
	monitoring *monitoring.Service
	heatCache  *cache.HeatCache
	appDB      database.DB
	tsdb       database.DB
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires the stack and listens until an interrupt arrives.
func (s *Server) Start() error {
	if err := s.initialize(); err != nil {
		return err
	}
	defer s.close()

	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})
	s.setupCleanupHandlers()

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go s.cleanup.Run(sweeperCtx, cleanupInterval)

	router := api.NewRouter(s.service, s.heatCache)
	router.SetHealthCheck(s.handleHealth())

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "x-device-id", "x-timestamp", "x-signature"}),
	)
	s.srv.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
	)(cors(router))

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// initialize connects the databases and builds the repositories and the
// aggregation service.
func (s *Server) initialize() error {
	appDB, err := database.NewPostgresDB(s.config.Database.AppDB)
	if err != nil {
		return fmt.Errorf("failed to connect to app database: %w", err)
	}
	s.appDB = appDB

	tsdb, err := database.NewTimescaleDB(s.config.Database.TimescaleDB)
	if err != nil {
		return fmt.Errorf("failed to connect to timescale database: %w", err)
	}
	s.tsdb = tsdb

	devices, err := postgres.NewDeviceRepository(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize device repository: %w", err)
	}
	cells, err := postgres.NewCellRepository(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize cell repository: %w", err)
	}
	presence, err := postgres.NewPresenceRepository(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize presence repository: %w", err)
	}
	vibes, err := postgres.NewVibeRepository(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize vibe repository: %w", err)
	}
	buildings, err := postgres.NewBuildingRepository(appDB)
	if err != nil {
		return fmt.Errorf("failed to initialize building repository: %w", err)
	}
	hits, err := timescale.NewHitRepository(tsdb, s.config.Presence.Retention)
	if err != nil {
		return fmt.Errorf("failed to initialize hit repository: %w", err)
	}

	s.service = pulseservice.New(devices, cells, presence, hits, vibes, buildings, s.config.Presence)
	if err := s.service.Validate(); err != nil {
		return err
	}
	s.cleanup = cleanup.New(hits, vibes, presence, s.config.Presence.Retention)

	// The heat cache is optional: no redis host, no cache.
	if s.config.Redis.Host != "" {
		heatCache, err := cache.NewHeatCache(s.config.Redis, s.config.Presence.HeatCacheTTL)
		if err != nil {
			nuts.L.Warnf("[Server] Heat cache disabled: %v", err)
		} else {
			s.heatCache = heatCache
		}
	}

	return nil
}

func (s *Server) close() {
	if s.heatCache != nil {
		s.heatCache.Close()
	}
	if s.tsdb != nil {
		s.tsdb.Close()
	}
	if s.appDB != nil {
		s.appDB.Close()
	}
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := s.appDB.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else if err := s.tsdb.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"ok":%t,"status":%q,"version":%q}`, code == http.StatusOK, status, nuts.GetVersion())
	}
}

func (s *Server) setupCleanupHandlers() {
	s.cleanup.OnCleanup("hits.pruned", func(deleted int64) {
		s.monitoring.RecordEvent("hits_pruned", map[string]string{
			"deleted": fmt.Sprint(deleted),
		})
	})
	s.cleanup.OnCleanup("vibes.pruned", func(deleted int64) {
		s.monitoring.RecordEvent("vibes_pruned", map[string]string{
			"deleted": fmt.Sprint(deleted),
		})
	})
	s.cleanup.OnCleanup("presence.pruned", func(deleted int64) {
		s.monitoring.RecordEvent("presence_pruned", map[string]string{
			"deleted": fmt.Sprint(deleted),
		})
	})
}

// recoveryLogger routes panics recovered by the handler chain into the
// structured log.
type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	nuts.L.Errorf("[Server] Panic recovered: %v", fmt.Sprintln(args...))
}
