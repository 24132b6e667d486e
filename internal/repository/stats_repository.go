package repository

import (
	"context"

	"blogr/internal/database"

	"github.com/pkg/errors"
)

type statsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *statsRepository) CountPosts(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts`)
}

func (r *statsRepository) count(ctx context.Context, query string) (int, error) {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := exec.GetContext(ctx, &count, query); err != nil {
		return 0, errors.Wrap(err, "count rows")
	}

	return count, nil
}
