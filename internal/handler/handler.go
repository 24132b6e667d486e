package handlers

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"blogr/internal/requestctx"
	"blogr/internal/service"
	"blogr/internal/session"
	"blogr/web"

	"github.com/pkg/errors"
)

type Handlers struct {
	AuthService   service.AuthService
	PostService   service.PostService
	HealthService service.HealthService
	Sessions      *session.Manager

	templates map[string]*template.Template
}

func NewHandlers(svc *service.Service, sessions *session.Manager) (*Handlers, error) {
	templates, err := loadTemplates(web.Templates)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		AuthService:   svc.Auth,
		PostService:   svc.Post,
		HealthService: svc.Health,
		Sessions:      sessions,
		templates:     templates,
	}, nil
}

// loadTemplates parses every page together with the shared layout, keyed by
// the page's base name.
func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	const layout = "templates/layout.html"

	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if page == layout {
			continue
		}
		t, err := template.ParseFS(fsys, layout, page)
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", page)
		}
		templates[strings.TrimSuffix(path.Base(page), ".html")] = t
	}
	return templates, nil
}

// render executes page name inside the layout. The current user, pending
// flashes and request id are added to data.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	state := requestctx.From(r.Context())

	if data == nil {
		data = map[string]any{}
	}
	data["User"] = state.User
	data["Flashes"] = state.Flashes()
	data["RequestID"] = state.RequestID
	if _, ok := data["Form"]; !ok {
		data["Form"] = map[string]string{}
	}

	t, ok := h.templates[name]
	if !ok {
		state.Log.WithField("template", name).Error("template not found")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		state.Log.WithError(err).WithField("template", name).Error("render error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// flash queues msg for the page rendered in this request.
func flash(r *http.Request, msg string) {
	requestctx.From(r.Context()).Flash(msg)
}
