package repository

import (
	"context"
	"database/sql"
	"fmt"

	"blogr/internal/database"
	"blogr/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type userRepository struct {
	db   *database.DB
	cost int
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db, cost: bcrypt.DefaultCost}
}

// NewUserRepositoryWithCost is NewUserRepository with an explicit bcrypt cost.
func NewUserRepositoryWithCost(db *database.DB, cost int) UserRepository {
	return &userRepository{db: db, cost: cost}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	user.PasswordHash = string(hashedPassword)

	exec, err := r.db.Handle(ctx)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, password) VALUES (?, ?) RETURNING id`

	err = withTx(ctx, exec, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &user.ID, tx.Rebind(query), user.Username, user.PasswordHash)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ConflictError{Message: fmt.Sprintf("User %s is already registered.", user.Username)}
		}
		return errors.Wrap(err, "create user")
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User

	query := `SELECT id, username, password FROM users WHERE id = ?`

	err = exec.GetContext(ctx, &user, exec.Rebind(query), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "user", ID: userID}
		}
		return nil, errors.Wrap(err, "get user by id")
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	exec, err := r.db.Handle(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User

	query := `SELECT id, username, password FROM users WHERE username = ?`

	err = exec.GetContext(ctx, &user, exec.Rebind(query), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUnknownUser
		}
		return nil, errors.Wrap(err, "get user by username")
	}

	return &user, nil
}

// VerifyPassword returns the user only when password matches the stored
// hash. An unknown username returns ErrUnknownUser without running bcrypt.
func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, models.ErrIncorrectPassword
	}

	return user, nil
}
