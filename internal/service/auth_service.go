package service

import (
	"context"
	"fmt"

	"blogr/internal/models"
	"blogr/internal/repository"

	"github.com/pkg/errors"
)

type AuthService interface {
	Register(ctx context.Context, req models.CreateUserRequest) (int64, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, req models.CreateUserRequest) (int64, error) {
	if err := validateStruct(req); err != nil {
		return 0, err
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err == nil && existing != nil {
		return 0, &models.ConflictError{Message: fmt.Sprintf("User %s is already registered.", req.Username)}
	}
	if err != nil && !errors.Is(err, models.ErrUnknownUser) {
		return 0, err
	}

	user := &models.User{Username: req.Username}
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// Login checks the credentials. The error tells an unknown username apart
// from a wrong password.
func (s *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	return s.userRepo.VerifyPassword(ctx, username, password)
}
