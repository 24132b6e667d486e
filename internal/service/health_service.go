package service

import (
	"context"

	"blogr/internal/repository"

	"github.com/pkg/errors"
)

type Health struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
	Posts  int    `json:"posts"`
}

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthService interface {
	Check(ctx context.Context) (*Health, error)
}

type healthService struct {
	db        Pinger
	statsRepo repository.StatsRepository
}

func NewHealthService(db Pinger, statsRepo repository.StatsRepository) HealthService {
	return &healthService{db: db, statsRepo: statsRepo}
}

func (h *healthService) Check(ctx context.Context) (*Health, error) {
	if err := h.db.HealthCheck(ctx); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}

	users, err := h.statsRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := h.statsRepo.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	return &Health{Status: "ok", Users: users, Posts: posts}, nil
}
