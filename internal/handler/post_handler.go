package handlers

import (
	"net/http"
	"strconv"

	"blogr/internal/models"
	"blogr/internal/requestctx"

	"github.com/gorilla/mux"
)

// postID reads the {id} route variable. Anything unparsable is a missing
// post.
func postID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &models.NotFoundError{Resource: "post"}
	}
	return id, nil
}

func postForm(r *http.Request) (models.PostRequest, map[string]string) {
	req := models.PostRequest{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}
	return req, map[string]string{"title": req.Title, "body": req.Body}
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListPosts(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index", map[string]any{"Posts": posts})
}

func (h *Handlers) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), id, requestctx.CurrentUser(r.Context()), false)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "show", map[string]any{"Post": post})
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	current := requestctx.CurrentUser(r.Context())
	if current == nil {
		h.RenderError(w, r, models.ErrAuthenticationRequired)
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "create", nil)
		return
	}

	req, form := postForm(r)
	post, err := h.PostService.CreatePost(r.Context(), req, current.ID)
	if err != nil {
		if models.IsValidation(err) {
			flash(r, err.Error())
			h.render(w, r, http.StatusBadRequest, "create", map[string]any{"Form": form})
			return
		}
		h.RenderError(w, r, err)
		return
	}

	requestctx.Logger(r.Context()).WithField("post_id", post.ID).Info("post created")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	current := requestctx.CurrentUser(r.Context())
	if current == nil {
		h.RenderError(w, r, models.ErrAuthenticationRequired)
		return
	}

	id, err := postID(r)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), id, current, true)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		form := map[string]string{"title": post.Title, "body": post.Body}
		h.render(w, r, http.StatusOK, "update", map[string]any{"Post": post, "Form": form})
		return
	}

	req, form := postForm(r)
	if _, err := h.PostService.UpdatePost(r.Context(), id, req, current); err != nil {
		if models.IsValidation(err) {
			flash(r, err.Error())
			h.render(w, r, http.StatusBadRequest, "update", map[string]any{"Post": post, "Form": form})
			return
		}
		h.RenderError(w, r, err)
		return
	}

	requestctx.Logger(r.Context()).WithField("post_id", id).Info("post updated")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	current := requestctx.CurrentUser(r.Context())
	if current == nil {
		h.RenderError(w, r, models.ErrAuthenticationRequired)
		return
	}

	id, err := postID(r)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), id, current); err != nil {
		h.RenderError(w, r, err)
		return
	}

	requestctx.Logger(r.Context()).WithField("post_id", id).Info("post deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
