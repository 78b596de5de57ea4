package api

import (
	"encoding/json"
	"net/http"

	"github.com/finbridge/colend/internal/adapters/performance"
)

// PerformanceIngestor exposes the performance store to the handlers.
type PerformanceIngestor interface {
	Performance() *performance.Store
}

// PerformanceHandler handles historical performance ingestion.
type PerformanceHandler struct {
	svc PerformanceIngestor
}

// NewPerformanceHandler creates a performance handler.
func NewPerformanceHandler(svc PerformanceIngestor) *PerformanceHandler {
	return &PerformanceHandler{svc: svc}
}

type ingestRequest struct {
	Records []performance.Record `json:"records"`
}

type ingestResponse struct {
	Ingested int `json:"ingested"`
}

// HandleIngest handles POST /performance requests. Records are applied
// in order; the first invalid record aborts the request but records
// already applied stay in effect.
func (h *PerformanceHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.performance"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "empty_ingest", NewKind(op, ErrBadRequest))
		return
	}

	for _, rec := range req.Records {
		if err := h.svc.Performance().Ingest(r.Context(), rec); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_record", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, ingestResponse{Ingested: len(req.Records)})
}
