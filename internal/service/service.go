package service

import (
	"blogr/internal/repository"
)

type Service struct {
	Auth   AuthService
	Post   PostService
	Health HealthService
}

func NewService(rep *repository.Repository, db Pinger) *Service {
	return &Service{
		Auth:   NewAuthService(rep.User),
		Post:   NewPostService(rep.Post),
		Health: NewHealthService(db, rep.Stats),
	}
}
