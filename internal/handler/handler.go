package handler

import (
	"encoding/json"
	"net/http"

	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/jwt"
	"github.com/accmint-dev/accmint/internal/logger"
	"github.com/accmint-dev/accmint/internal/service"
)

type Handler struct {
	svc service.AccountService
	jwt jwt.JwtService
	cfg *config.Config
}

func New(svc service.AccountService, jwt jwt.JwtService, cfg *config.Config) *Handler {
	return &Handler{svc: svc, jwt: jwt, cfg: cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
