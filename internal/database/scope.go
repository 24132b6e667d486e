package database

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrScopeClosed = errors.New("database scope is closed")

type scopeKey struct{}

// Scope owns at most one connection for the lifetime of a single request.
// The connection is checked out of the pool on the first Handle call and
// returned by Close.
type Scope struct {
	db *sqlx.DB

	mu     sync.Mutex
	conn   *sqlx.Conn
	closed bool
}

func (db *DB) NewScope() *Scope {
	return &Scope{db: db.DB}
}

func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

func (s *Scope) Handle(ctx context.Context) (Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrScopeClosed
	}

	if s.conn == nil {
		conn, err := s.db.Connx(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "open request connection")
		}
		s.conn = conn
	}

	return s.conn, nil
}

// Opened reports whether a connection has been checked out.
func (s *Scope) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Close releases the connection if one was opened. Only the first call has
// an effect.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return errors.Wrap(err, "close request connection")
	}
	return nil
}
