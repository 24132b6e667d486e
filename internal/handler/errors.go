package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blogr/internal/models"
	"blogr/internal/requestctx"
)

// RenderError maps a service error onto the error page. Missing
// authentication is not an error page but a trip to the login form.
func (h *Handlers) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		message string
	)

	switch {
	case errors.Is(err, models.ErrAuthenticationRequired):
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	case models.IsNotFound(err):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrForbidden):
		status, message = http.StatusForbidden, "You are not allowed to change this post."
	default:
		requestctx.Logger(r.Context()).WithError(err).Error("request failed")
		status, message = http.StatusInternalServerError, "Something went wrong."
	}

	h.render(w, r, status, "error", map[string]any{
		"Status":     status,
		"StatusText": http.StatusText(status),
		"Message":    message,
	})
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
