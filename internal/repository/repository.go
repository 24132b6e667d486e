package repository

import (
	"context"

	"blogr/internal/database"
	"blogr/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID int64) error
}

type StatsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountPosts(ctx context.Context) (int, error)
}

type Repository struct {
	User  UserRepository
	Post  PostRepository
	Stats StatsRepository
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{
		User:  NewUserRepository(db),
		Post:  NewPostRepository(db),
		Stats: NewStatsRepository(db),
	}
}

// withTx runs fn in a transaction on exec and commits it. The transaction is
// rolled back if fn fails.
func withTx(ctx context.Context, exec database.Executor, fn func(tx *sqlx.Tx) error) error {
	tx, err := exec.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}
