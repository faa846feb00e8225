package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
	"github.com/irahuldutta02/go-google-github-auth/internal/config"
	"github.com/irahuldutta02/go-google-github-auth/internal/db"
)

type infra struct {
	Store   store.Store
	cleanup func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*infra, error) {
	if cfg.DatabaseDSN == "" {
		log.Warn().Msg("no DATABASE_DSN set, using in-memory user store")
		return &infra{Store: store.NewMemory()}, nil
	}

	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	log.Info().Msg("database ready")

	return &infra{
		Store:   store.NewPostgres(database),
		cleanup: database.Close,
	}, nil
}
