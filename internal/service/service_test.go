package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"blogr/internal/config"
	"blogr/internal/database"
	"blogr/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestService wires the services to a fresh SQLite database in a temp dir.
func newTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	cfg := config.Default()
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "blogr.sqlite")

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.Connect(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB() })

	repo := &repository.Repository{
		User:  repository.NewUserRepositoryWithCost(db, bcrypt.MinCost),
		Post:  repository.NewPostRepository(db),
		Stats: repository.NewStatsRepository(db),
	}

	return NewService(repo, db), db
}
