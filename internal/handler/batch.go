package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/accmint-dev/accmint/internal/middleware"
	"github.com/accmint-dev/accmint/internal/utils"
)

// the upper bound on Count is config-owned and enforced by the service, so
// the client sees the configured limit in the error message
type batchRequest struct {
	Email string `validate:"required" json:"email"`
	Count int    `validate:"required,min=1" json:"count"`
}

type batchVerifyRequest struct {
	Email string `validate:"required" json:"email"`
	Code  string `validate:"required" json:"code"`
}

// StartBatch kicks off a batch creation and replies with the first status
// snapshot, including the sessions already awaiting verification codes.
func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	status, err := h.svc.StartBatch(r.Context(), middleware.GetUserID(r), body.Email, body.Count)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, status)
}

// BatchStatus renders the owner's view of a batch.
func (h *Handler) BatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batch")

	status, err := h.svc.BatchStatus(middleware.GetUserID(r), batchID)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// VerifyBatch submits a verification code for one email of a batch.
func (h *Handler) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batch")

	var body batchVerifyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	status, err := h.svc.VerifyBatch(r.Context(), middleware.GetUserID(r), batchID, body.Email, body.Code)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
