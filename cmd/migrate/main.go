package main

import (
	"context"

	"printshop-storefront/internal/config"
	"printshop-storefront/internal/db"
	"printshop-storefront/internal/logging"
	"printshop-storefront/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogPretty).With().Str("cmd", "migrate").Logger()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
}
