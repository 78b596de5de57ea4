package api

import (
	"net/http"

	"github.com/finbridge/colend/internal/app"
)

// StatsProvider reports current service statistics.
type StatsProvider interface {
	Stats() app.Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	svc StatsProvider
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(svc StatsProvider) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Stats())
}
