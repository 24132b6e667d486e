package middleware

import (
	"net/http"

	"blogr/internal/database"
	"blogr/internal/requestctx"
)

// DBScope gives every request its own lazily opened connection and returns it
// to the pool when the request ends, panics included.
func DBScope(db *database.DB) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := db.NewScope()
			defer func() {
				if err := scope.Close(); err != nil {
					requestctx.Logger(r.Context()).WithError(err).Error("failed to close request connection")
				}
			}()

			next.ServeHTTP(w, r.WithContext(database.WithScope(r.Context(), scope)))
		})
	}
}
