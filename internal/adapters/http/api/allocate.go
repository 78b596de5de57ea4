package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/internal/engine"
)

// Allocator defines the allocation operations the handlers call.
type Allocator interface {
	Allocate(ctx context.Context, loan model.LoanRequest) (*model.AllocationResult, error)
	AllocateBatch(ctx context.Context, loans []model.LoanRequest) []engine.ItemResult
	Confirm(ctx context.Context, partnershipID string, amount decimal.Decimal) error
}

// AllocateHandler handles single and batch allocation requests.
type AllocateHandler struct {
	svc Allocator
}

// NewAllocateHandler creates an allocation handler.
func NewAllocateHandler(svc Allocator) *AllocateHandler {
	return &AllocateHandler{svc: svc}
}

// allocateRequest mirrors the POST /allocate body. Commit consumes the
// winning partnership's monthly limit in the same call.
type allocateRequest struct {
	Loan   model.LoanRequest `json:"loan"`
	Commit bool              `json:"commit,omitempty"`
}

type batchRequest struct {
	Loans []model.LoanRequest `json:"loans"`
}

type batchResponse struct {
	BatchID string              `json:"batch_id"`
	Items   []batchItemResponse `json:"items"`
}

// batchItemResponse is the wire shape of one batch slot. Exactly one
// of result and error is set.
type batchItemResponse struct {
	Index  int                     `json:"index"`
	LoanID string                  `json:"loan_id"`
	Result *model.AllocationResult `json:"result,omitempty"`
	Error  *errorResponse          `json:"error,omitempty"`
}

// HandleAllocate handles POST /allocate requests.
func (h *AllocateHandler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	const op = "api.allocate"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.Loan.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_loan", err)
		return
	}

	res, err := h.svc.Allocate(r.Context(), req.Loan)
	if err != nil {
		status, code := allocationStatus(err)
		writeError(w, status, code, err)
		return
	}

	if req.Commit {
		if err := h.svc.Confirm(r.Context(), res.Recommended.Partnership.ID, req.Loan.Amount); err != nil {
			writeError(w, http.StatusConflict, "commit_failed", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAllocateBatch handles POST /allocate/batch requests.
func (h *AllocateHandler) HandleAllocateBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.allocate_batch"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Loans) == 0 {
		writeError(w, http.StatusBadRequest, "empty_batch", NewKind(op, ErrBadRequest))
		return
	}

	results := h.svc.AllocateBatch(r.Context(), req.Loans)
	out := batchResponse{
		BatchID: uuid.NewString(),
		Items:   make([]batchItemResponse, len(results)),
	}
	for i, item := range results {
		out.Items[i] = batchItemResponse{
			Index:  item.Index,
			LoanID: item.LoanID,
			Result: item.Result,
		}
		if item.Err != nil {
			_, code := allocationStatus(item.Err)
			out.Items[i].Error = &errorResponse{Code: code, Message: item.Err.Error()}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// allocationStatus maps engine errors to HTTP semantics: validation
// failures are the client's fault, rejections are unprocessable, and
// anything else is a server error.
func allocationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidLoan):
		return http.StatusBadRequest, "invalid_loan"
	case errors.Is(err, engine.ErrNoProfitableCandidates):
		return http.StatusUnprocessableEntity, "no_profitable_candidates"
	case errors.Is(err, engine.ErrNoEligiblePartners):
		return http.StatusUnprocessableEntity, "no_eligible_partners"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
