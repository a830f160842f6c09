// Package viewer serves the presentation step: station map, parameter
// listings, time-series data and charts, and CSV download, all read from
// the station shapefile and the normalized file tree.
package viewer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/catalog"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/observability"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/series"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/stations"
)

// Server exposes the viewer HTTP API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	table      *stations.Table
	store      *series.Store
	params     *catalog.Catalog
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires the viewer routes onto a stdlib mux.
func NewServer(addr string, table *stations.Table, store *series.Store, params *catalog.Catalog, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		table:   table,
		store:   store,
		params:  params,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.instrument("index", s.handleIndex))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/stations", s.instrument("stations", s.handleStations))
	mux.HandleFunc("GET /api/stations/{site}/parameters", s.instrument("parameters", s.handleParameters))
	mux.HandleFunc("GET /api/stations/{site}/series", s.instrument("series", s.handleSeries))
	mux.HandleFunc("GET /api/stations/{site}/chart.png", s.instrument("chart", s.handleChart))
	mux.HandleFunc("GET /api/stations/{site}/download", s.instrument("download", s.handleDownload))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("viewer http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "normalized data has not been indexed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// instrument wraps a handler with a per-route request counter.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
