package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/finbridge/colend/internal/adapters/repository"
	"github.com/finbridge/colend/internal/domain/model"
)

// PartnershipAdmin exposes the partnership repository to the handlers.
type PartnershipAdmin interface {
	Partnerships() *repository.Store
}

// PartnershipsHandler handles partnership administration requests.
type PartnershipsHandler struct {
	svc PartnershipAdmin
}

// NewPartnershipsHandler creates a partnerships handler.
func NewPartnershipsHandler(svc PartnershipAdmin) *PartnershipsHandler {
	return &PartnershipsHandler{svc: svc}
}

// HandleCollection handles GET and POST /partnerships.
func (h *PartnershipsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.partnerships"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.svc.Partnerships().List(r.Context()))
	case http.MethodPost:
		var p model.Partnership
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.svc.Partnerships().Create(r.Context(), p)
		if err != nil {
			writeError(w, partnershipStatus(err), "create_failed", err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	}
}

// HandleItem handles GET and PATCH /partnerships/{id}.
func (h *PartnershipsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.partnership"
	id := strings.TrimPrefix(r.URL.Path, "/partnerships/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.svc.Partnerships().Get(r.Context(), id)
		if err != nil {
			writeError(w, partnershipStatus(err), "not_found", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPatch:
		var upd repository.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		updated, err := h.svc.Partnerships().Apply(r.Context(), id, upd)
		if err != nil {
			writeError(w, partnershipStatus(err), "update_failed", err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	}
}

func partnershipStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidPartnership):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
