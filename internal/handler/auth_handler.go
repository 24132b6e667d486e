package handlers

import (
	"errors"
	"net/http"

	"blogr/internal/models"
	"blogr/internal/requestctx"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "register", nil)
		return
	}

	req := models.CreateUserRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	form := map[string]string{"username": req.Username}

	userID, err := h.AuthService.Register(r.Context(), req)
	switch {
	case err == nil:
	case models.IsValidation(err):
		flash(r, err.Error())
		h.render(w, r, http.StatusBadRequest, "register", map[string]any{"Form": form})
		return
	case models.IsConflict(err):
		flash(r, err.Error())
		h.render(w, r, http.StatusConflict, "register", map[string]any{"Form": form})
		return
	default:
		h.RenderError(w, r, err)
		return
	}

	requestctx.Logger(r.Context()).WithField("user_id", userID).Info("user registered")

	h.Sessions.Logout(w)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login", nil)
		return
	}

	username := r.PostFormValue("username")
	form := map[string]string{"username": username}

	user, err := h.AuthService.Login(r.Context(), username, r.PostFormValue("password"))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnknownUser):
		flash(r, "Incorrect username.")
		h.render(w, r, http.StatusUnauthorized, "login", map[string]any{"Form": form})
		return
	case errors.Is(err, models.ErrIncorrectPassword):
		flash(r, "Incorrect password.")
		h.render(w, r, http.StatusUnauthorized, "login", map[string]any{"Form": form})
		return
	default:
		h.RenderError(w, r, err)
		return
	}

	if err := h.Sessions.Login(w, user.ID); err != nil {
		h.RenderError(w, r, err)
		return
	}

	requestctx.Logger(r.Context()).WithField("user_id", user.ID).Info("user logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
