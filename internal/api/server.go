// Package api exposes the daemon's read surface and the alert settings over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dublimator.xyz/paned/internal/config"
	"dublimator.xyz/paned/internal/dos"
	"dublimator.xyz/paned/internal/log"
	"dublimator.xyz/paned/internal/sysmon"
)

// MetricsSource supplies the latest poller snapshots.
type MetricsSource interface {
	LatestSystem() sysmon.SystemMetrics
	LatestContainers() []sysmon.ContainerMetrics
}

// IncidentSource supplies a deep copy of the persisted incident log.
type IncidentSource interface {
	Snapshot(ctx context.Context) ([]dos.Incident, error)
}

// TestNotifier sends the API-triggered test message.
type TestNotifier interface {
	NotifyTest(ctx context.Context) error
}

// Deps wires the server's collaborators.
type Deps struct {
	Metrics   MetricsSource
	Incidents IncidentSource
	Settings  *config.SettingsStore
	Notifier  TestNotifier
}

// Server is the HTTP API server.
type Server struct {
	addr   string
	deps   Deps
	server *http.Server
	logger log.Logger
}

func NewServer(addr string, deps Deps) *Server {
	return &Server{
		addr:   addr,
		deps:   deps,
		logger: log.GetLogger().WithField("component", "api"),
	}
}

// Router builds the chi router. Exposed separately so tests can drive it with
// httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(allowAllCORS)

	r.Route("/server", func(r chi.Router) {
		r.Get("/metrics", s.handleServerMetrics)
		r.Get("/health", s.handleHealth)
	})
	r.Route("/metrics", func(r chi.Router) {
		r.Get("/docker", s.handleDockerMetrics)
	})
	r.Route("/dos", func(r chi.Router) {
		r.Get("/get-dos", s.handleGetDos)
	})
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleUpdateSettings)
		r.Post("/test", s.handleTestNotification)
	})
	return r
}

// Start launches the server in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.WithField("addr", s.addr).Info("starting HTTP API")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("api server error")
		}
	}()
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// allowAllCORS mirrors the permissive policy of the original panel backend:
// the API is reachable from any origin.
func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
