package middleware

import (
	"net/http"

	"blogr/internal/requestctx"
	"blogr/internal/session"
)

const LoginPath = "/auth/login"

// ErrorRenderer writes the error page for err.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, err error)

// LoadUser resolves the session to a user once and stores it in the request
// state. A lookup failure goes to onError.
func LoadUser(sessions *session.Manager, users session.UserLookup, onError ErrorRenderer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, err := sessions.Resolve(ctx, r, users)
			if err != nil {
				requestctx.Logger(ctx).WithError(err).Error("failed to load session user")
				onError(w, r, err)
				return
			}

			state := requestctx.From(ctx)
			state.User = user
			next.ServeHTTP(w, r.WithContext(requestctx.With(ctx, state)))
		})
	}
}

// RequireAuthenticated sends anonymous requests to the login page without
// calling next.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestctx.CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
