package repository

import (
	"context"
	"database/sql"
	"time"

	"blogr/internal/database"
	"blogr/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const selectPosts = `
	SELECT p.id, p.title, COALESCE(p.body, '') AS body, p.created, p.author_id, u.username
	FROM posts p JOIN users u ON p.author_id = u.id`

type PostRepositoryImpl struct {
	db  *database.DB
	now func() time.Time
}

func NewPostRepository(db *database.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db, now: time.Now}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return err
	}

	if post.Created.IsZero() {
		post.Created = r.now().UTC()
	}

	query := `INSERT INTO posts (title, body, author_id, created) VALUES (?, ?, ?, ?) RETURNING id`

	err = withTx(ctx, exec, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &post.ID, tx.Rebind(query), post.Title, post.Body, post.AuthorID, post.Created)
	})
	if err != nil {
		return errors.Wrap(err, "create post")
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = exec.GetContext(ctx, &post, exec.Rebind(selectPosts+` WHERE p.id = ?`), postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "post", ID: postID}
		}
		return nil, errors.Wrap(err, "get post")
	}

	return &post, nil
}

// List returns every post, newest first. Posts created in the same instant
// are ordered by descending id.
func (r *PostRepositoryImpl) List(ctx context.Context) ([]models.Post, error) {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return nil, err
	}

	posts := []models.Post{}
	err = exec.SelectContext(ctx, &posts, selectPosts+` ORDER BY p.created DESC, p.id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list posts")
	}

	return posts, nil
}

// Update overwrites title and body. Author and creation time never change.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE posts SET title = ?, body = ? WHERE id = ?`

	var rowsAffected int64
	err = withTx(ctx, exec, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(query), post.Title, post.Body, post.ID)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return errors.Wrap(err, "update post")
	}

	if rowsAffected == 0 {
		return &models.NotFoundError{Resource: "post", ID: post.ID}
	}

	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID int64) error {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM posts WHERE id = ?`

	var rowsAffected int64
	err = withTx(ctx, exec, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(query), postID)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return errors.Wrap(err, "delete post")
	}

	if rowsAffected == 0 {
		return &models.NotFoundError{Resource: "post", ID: postID}
	}

	return nil
}
