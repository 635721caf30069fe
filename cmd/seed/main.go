package main

import (
	"context"

	"printshop-storefront/internal/config"
	"printshop-storefront/internal/db"
	"printshop-storefront/internal/logging"
	"printshop-storefront/internal/repository/product"
	"printshop-storefront/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogPretty).With().Str("cmd", "seed").Logger()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, product.NewPostgres(pool, logger), cfg.StoreCurrency, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}
	logger.Info().Msg("seed applied")
}
