// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/finbridge/colend/internal/app"
)

// Service bundles the operations the HTTP layer calls. Keeping it an
// interface decouples handlers from the app wiring for tests.
type Service interface {
	Allocator
	PartnershipAdmin
	PerformanceIngestor

	Stats() app.Stats
}

// Server wires HTTP routes for the allocation API.
type Server struct {
	allocateHandler     *AllocateHandler
	partnershipsHandler *PartnershipsHandler
	performanceHandler  *PerformanceHandler
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(svc Service) *Server {
	return &Server{
		allocateHandler:     NewAllocateHandler(svc),
		partnershipsHandler: NewPartnershipsHandler(svc),
		performanceHandler:  NewPerformanceHandler(svc),
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(svc),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/allocate", MetricsMiddleware(s.allocateHandler.HandleAllocate, "allocate"))
	mux.HandleFunc("/allocate/batch", MetricsMiddleware(s.allocateHandler.HandleAllocateBatch, "allocate_batch"))
	mux.HandleFunc("/partnerships", MetricsMiddleware(s.partnershipsHandler.HandleCollection, "partnerships"))
	mux.HandleFunc("/partnerships/", MetricsMiddleware(s.partnershipsHandler.HandleItem, "partnership"))
	mux.HandleFunc("/performance", MetricsMiddleware(s.performanceHandler.HandleIngest, "performance"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
