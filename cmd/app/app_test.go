package app

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"blogr/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) (*App, *httptest.Server) {
	t.Helper()

	cfg := config.Default()
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "blogr.sqlite")
	cfg.Session.SecretKey = "test-secret"
	if mutate != nil {
		mutate(cfg)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	a, err := New(context.Background(), cfg, log)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return a, srv
}

// newClient returns a browser-like client that keeps cookies and does not
// follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()

	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()

	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func registerAndLogin(t *testing.T, c *http.Client, base, username, password string) {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}

	resp, _ := postForm(t, c, base+"/auth/register", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, _ = postForm(t, c, base+"/auth/login", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestBlogScenario(t *testing.T) {
	a, srv := newTestApp(t, nil)
	ctx := context.Background()

	alice := newClient(t)
	registerAndLogin(t, alice, srv.URL, "alice", "pw1")

	resp, _ := postForm(t, alice, srv.URL+"/create", url.Values{"title": {"Hello"}, "body": {"World"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := get(t, alice, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "alice")

	posts, err := a.Services.Post.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	postURL := srv.URL + "/" + strconv.FormatInt(posts[0].ID, 10)

	bob := newClient(t)
	registerAndLogin(t, bob, srv.URL, "bob", "pw2")

	resp, _ = postForm(t, bob, postURL+"/update", url.Values{"title": {"Mine now"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = postForm(t, bob, postURL+"/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = get(t, bob, postURL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "World")

	resp, _ = postForm(t, alice, postURL+"/update", url.Values{"title": {"Hello again"}, "body": {"World"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	post, err := a.Services.Post.GetPost(ctx, posts[0].ID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", post.Title)

	resp, _ = postForm(t, alice, postURL+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = get(t, alice, postURL)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return a.DB.Stats().InUse == 0
	}, time.Second, 10*time.Millisecond)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	_, srv := newTestApp(t, nil)
	c := newClient(t)

	for _, path := range []string{"/create", "/1/update"} {
		resp, _ := get(t, c, srv.URL+path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"), path)
	}

	resp, _ := postForm(t, c, srv.URL+"/1/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	_, srv := newTestApp(t, nil)
	c := newClient(t)
	registerAndLogin(t, c, srv.URL, "alice", "pw1")

	resp, body := get(t, c, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Log Out")

	resp, _ = get(t, c, srv.URL+"/auth/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = get(t, c, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Log In")

	resp, _ = get(t, c, srv.URL+"/create")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	_, srv := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.Login = 2
		cfg.RateLimit.Window = time.Hour
	})
	c := newClient(t)
	form := url.Values{"username": {"nobody"}, "password": {"pw"}}

	for i := 0; i < 2; i++ {
		resp, body := postForm(t, c, srv.URL+"/auth/login", form)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body, "Incorrect username.")
	}

	resp, _ := postForm(t, c, srv.URL+"/auth/login", form)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// The form itself is never limited.
	resp, _ = get(t, c, srv.URL+"/auth/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRateLimit_ForwardedFor(t *testing.T) {
	form := url.Values{"username": {"nobody"}, "password": {"pw"}}

	login := func(t *testing.T, c *http.Client, base, forwardedFor string) int {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, base+"/auth/login", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwardedFor)

		resp, err := c.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	tests := []struct {
		name       string
		trustProxy bool
		expected   []int
	}{
		{
			name:     "headers ignored by default",
			expected: []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		{
			name:       "trusted proxy",
			trustProxy: true,
			expected:   []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestApp(t, func(cfg *config.Config) {
				cfg.RateLimit.Login = 2
				cfg.RateLimit.Window = time.Hour
				cfg.RateLimit.TrustProxyHeaders = tt.trustProxy
			})
			c := newClient(t)

			var got []int
			for i := range tt.expected {
				got = append(got, login(t, c, srv.URL, "1.2.3."+strconv.Itoa(i+1)))
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHealth(t *testing.T) {
	_, srv := newTestApp(t, nil)

	resp, body := get(t, newClient(t), srv.URL+"/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","users":0,"posts":0}`, body)
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestApp(t, nil)

	resp, _ := get(t, newClient(t), srv.URL+"/1/delete")

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
