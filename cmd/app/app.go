package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"blogr/internal/config"
	"blogr/internal/database"
	handlers "blogr/internal/handler"
	"blogr/internal/middleware"
	"blogr/internal/ratelimit"
	"blogr/internal/repository"
	"blogr/internal/service"
	"blogr/internal/session"

	"github.com/gorilla/mux"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func NewLogger(cfg config.Log) *logrus.Logger {
	log := logrus.New()
	log.Level = logrus.InfoLevel
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.Level = level
	}

	if cfg.Format == "text" {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	} else {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	log.Out = os.Stdout
	return log
}

type App struct {
	Cfg      *config.Config
	Log      *logrus.Logger
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Sessions *session.Manager
	Limiter  ratelimit.Limiter
	Handler  http.Handler

	redis *redis.Client
	stop  context.CancelFunc
}

// New connects to the database and wires the full handler stack.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	repo := repository.NewRepository(db)
	services := service.NewService(repo, db)
	sessions := session.NewManager(cfg.Session)

	h, err := handlers.NewHandlers(services, sessions)
	if err != nil {
		db.CloseDB()
		return nil, err
	}

	a := &App{
		Cfg:      cfg,
		Log:      log,
		DB:       db,
		Repo:     repo,
		Services: services,
		Sessions: sessions,
	}

	bg, stop := context.WithCancel(context.Background())
	a.stop = stop
	a.Limiter = a.newLimiter(ctx, bg)

	a.Handler = middleware.Chain(
		NewRouter(h, a.Limiter, cfg.RateLimit.TrustProxyHeaders),
		middleware.LoadUser(sessions, repo.User, h.RenderError),
		middleware.DBScope(db),
		middleware.Recover,
		middleware.Logging(log),
	)

	return a, nil
}

// newLimiter picks the login limiter: redis when configured and reachable,
// in-process buckets otherwise, none when the limit is zero.
func (a *App) newLimiter(ctx, bg context.Context) ratelimit.Limiter {
	rl := a.Cfg.RateLimit
	if rl.Login <= 0 {
		a.Log.Info("login rate limiting disabled")
		return nil
	}

	window := rl.Window
	if window <= 0 {
		window = time.Minute
	}

	if rl.RedisAddr != "" {
		client, err := ratelimit.Connect(ctx, rl.RedisAddr)
		if err == nil {
			a.redis = client
			a.Log.WithField("addr", rl.RedisAddr).Info("login rate limiting backed by redis")
			return ratelimit.NewRedis(client, "blogr:login", rl.Login, window)
		}
		a.Log.WithError(err).Warn("redis unavailable, falling back to in-memory rate limiting")
	}

	limiter := ratelimit.NewMemory(rl.Login, window)
	go limiter.Run(bg)
	return limiter
}

func NewRouter(h *handlers.Handlers, limiter ratelimit.Limiter, trustProxy bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.Register).Methods(http.MethodGet, http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodGet)
	var login http.Handler = http.HandlerFunc(h.Login)
	if limiter != nil {
		login = middleware.RateLimit(limiter, trustProxy)(login)
	}
	auth.Handle("/login", login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.Handle("/create", middleware.RequireAuthenticated(http.HandlerFunc(h.CreatePost))).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/{id:[0-9]+}", h.ShowPost).Methods(http.MethodGet)
	r.Handle("/{id:[0-9]+}/update", middleware.RequireAuthenticated(http.HandlerFunc(h.UpdatePost))).
		Methods(http.MethodGet, http.MethodPost)
	r.Handle("/{id:[0-9]+}/delete", middleware.RequireAuthenticated(http.HandlerFunc(h.DeletePost))).
		Methods(http.MethodPost)

	return r
}

func (a *App) Close() error {
	a.stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.WithError(err).Warn("failed to close redis client")
		}
	}
	return a.DB.CloseDB()
}
