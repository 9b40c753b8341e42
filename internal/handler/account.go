package handler

import (
	"net/http"

	"github.com/accmint-dev/accmint/internal/middleware"
	"github.com/accmint-dev/accmint/internal/utils"
)

type createRequest struct {
	Email string `validate:"required" json:"email"`
}

type verifyRequest struct {
	Code string `validate:"required" json:"code"`
}

type listResponse struct {
	Total    int         `json:"total"`
	Accounts interface{} `json:"accounts"`
	Note     string      `json:"note,omitempty"`
}

// Create starts a single-shot account creation for the calling client.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	pending, err := h.svc.Create(r.Context(), middleware.GetUserID(r), body.Email)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, pending)
}

// Verify advances the calling client's pending session with the emailed code.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	cred, err := h.svc.Verify(r.Context(), middleware.GetUserID(r), body.Code)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cred)
}

const listDisplayLimit = 10

// List returns stored credentials; the response body carries the first 10
// with a note about any remainder, mirroring what the bot displays.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	creds, err := h.svc.List()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := listResponse{Total: len(creds), Accounts: creds}
	if len(creds) > listDisplayLimit {
		resp.Accounts = creds[:listDisplayLimit]
		resp.Note = "Only showing the first 10 accounts. The credential store holds the complete list"
	}
	writeJSON(w, http.StatusOK, resp)
}
