package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogr/internal/config"
	handlers "blogr/internal/handler"
	"blogr/internal/models"
	"blogr/internal/requestctx"
	"blogr/internal/service"
	"blogr/internal/session"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testHandlers struct {
	*handlers.Handlers
	auth   *MockAuthService
	posts  *MockPostService
	health *MockHealthService
}

func newTestHandlers(t *testing.T) *testHandlers {
	t.Helper()

	auth := new(MockAuthService)
	posts := new(MockPostService)
	health := new(MockHealthService)

	sessions := session.NewManager(config.Session{
		SecretKey:  "test-secret",
		CookieName: "session",
		Duration:   time.Hour,
	})

	h, err := handlers.NewHandlers(&service.Service{Auth: auth, Post: posts, Health: health}, sessions)
	require.NoError(t, err)

	t.Cleanup(func() {
		auth.AssertExpectations(t)
		posts.AssertExpectations(t)
		health.AssertExpectations(t)
	})

	return &testHandlers{Handlers: h, auth: auth, posts: posts, health: health}
}

// newRequest builds a request carrying request state for user (nil for an
// anonymous visitor). Form values make it a urlencoded POST body.
func newRequest(method, target string, form url.Values, user *models.User, vars map[string]string) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	state := requestctx.New("test-request", log)
	state.User = user
	req = req.WithContext(requestctx.With(req.Context(), state))

	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}
