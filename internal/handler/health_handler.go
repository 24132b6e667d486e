package handlers

import (
	"net/http"

	"blogr/internal/requestctx"
)

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health, err := h.HealthService.Check(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).WithError(err).Warn("health check failed")
		writeJSON(w, ErrorResponse{Status: "unavailable", Error: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, health, http.StatusOK)
}
