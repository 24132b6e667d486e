package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"blogr/internal/requestctx"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h with middlewares. The first one listed ends up innermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

type responseRecorder struct {
	b      int
	status int
	w      http.ResponseWriter
}

func (r *responseRecorder) Header() http.Header { return r.w.Header() }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.w.Write(p)
	r.b += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

// Logging creates the request state with a fresh request id and a logger
// carrying it, and logs each request once it completes.
func Logging(log *logrus.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			start := time.Now()
			rr := &responseRecorder{w: w}
			entry := log.WithFields(logrus.Fields{
				"http.req.path":   r.URL.Path,
				"http.req.method": r.Method,
				"http.req.id":     requestID,
			})
			entry.Debug("request started")
			defer func() {
				status := rr.status
				if status == 0 {
					status = http.StatusOK
				}
				entry.WithFields(logrus.Fields{
					"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
					"http.resp.status":  status,
					"http.resp.bytes":   rr.b,
				}).Info("request complete")
			}()

			w.Header().Set("X-Request-ID", requestID)
			ctx := requestctx.With(r.Context(), requestctx.New(requestID, entry))
			next.ServeHTTP(rr, r.WithContext(ctx))
		})
	}
}

// Recover turns a panic in next into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				requestctx.Logger(r.Context()).WithFields(logrus.Fields{
					"panic": v,
					"stack": string(debug.Stack()),
				}).Error("handler panicked")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
