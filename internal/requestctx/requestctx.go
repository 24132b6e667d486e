// Package requestctx carries per-request state through context.Context: the
// request id, the request logger, the resolved user and pending flash
// messages.
package requestctx

import (
	"context"
	"sync"

	"blogr/internal/models"

	"github.com/sirupsen/logrus"
)

type ctxKeyState struct{}

type State struct {
	RequestID string
	Log       logrus.FieldLogger
	User      *models.User

	mu      sync.Mutex
	flashes []string
}

func New(requestID string, log logrus.FieldLogger) *State {
	return &State{RequestID: requestID, Log: log}
}

func With(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKeyState{}, s)
}

// From returns the state stored in ctx, or an empty state logging to the
// standard logrus logger when there is none.
func From(ctx context.Context) *State {
	if s, ok := ctx.Value(ctxKeyState{}).(*State); ok && s != nil {
		return s
	}
	return &State{Log: logrus.StandardLogger()}
}

func (s *State) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
}

// Flashes returns and clears the pending messages.
func (s *State) Flashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

func CurrentUser(ctx context.Context) *models.User {
	return From(ctx).User
}

func Logger(ctx context.Context) logrus.FieldLogger {
	return From(ctx).Log
}
