// Command initdb drops the users and posts tables and recreates them empty.
package main

import (
	"context"

	"blogr/cmd/app"
	"blogr/internal/config"
	"blogr/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := app.NewLogger(cfg.Log)
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.CloseDB()

	if err := db.Reset(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	log.Info("Initialized the database.")
}
