package handler

import (
	"crypto/subtle"
	"net/http"

	internal_errors "github.com/accmint-dev/accmint/internal/errors"
	"github.com/accmint-dev/accmint/internal/utils"
)

type tokenRequest struct {
	ClientID     string `validate:"required" json:"client_id"`
	ClientSecret string `validate:"required" json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Token exchanges a configured bot client's credentials for a bearer token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var body tokenRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if !h.validClient(body.ClientID, body.ClientSecret) {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Unknown client or wrong secret", StatusCode: http.StatusUnauthorized})
		return
	}

	token, err := h.jwt.NewToken(body.ClientID)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

func (h *Handler) validClient(id, secret string) bool {
	for _, c := range h.cfg.Clients() {
		if c.ID == id && subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1 {
			return true
		}
	}
	return false
}
