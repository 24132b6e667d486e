// Package session keeps the logged-in user id in a signed cookie.
package session

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"blogr/internal/config"
	"blogr/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// UserLookup is the part of the credential store the manager needs to turn a
// session into a user.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

type Manager struct {
	secret     []byte
	cookieName string
	duration   time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(cfg config.Session) *Manager {
	return &Manager{
		secret:     []byte(cfg.SecretKey),
		cookieName: cfg.CookieName,
		duration:   cfg.Duration,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Login replaces whatever session the client holds with one for userID.
func (m *Manager) Login(w http.ResponseWriter, userID int64) error {
	now := m.now()
	expires := now.Add(m.duration)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return errors.Wrap(err, "sign session token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID reads the user id from the session cookie. A missing, expired or
// tampered token reports false.
func (m *Manager) UserID(r *http.Request) (int64, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, false
	}

	return claims.UserID, true
}

// Resolve returns the user the request's session belongs to. Anonymous
// requests return nil without touching the store, and a session naming a
// user that no longer exists is anonymous too.
func (m *Manager) Resolve(ctx context.Context, r *http.Request, users UserLookup) (*models.User, error) {
	userID, ok := m.UserID(r)
	if !ok {
		return nil, nil
	}

	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
