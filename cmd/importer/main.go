package main

import (
	"context"
	"flag"
	"os"
	"time"

	"printshop-storefront/internal/config"
	"printshop-storefront/internal/db"
	"printshop-storefront/internal/importer"
	"printshop-storefront/internal/logging"
	"printshop-storefront/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to the apparel catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogPretty).With().Str("cmd", "importer").Logger()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", filePath).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("imported", count).Msg("import failed")
	}

	logger.Info().
		Int("imported", count).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("catalog import finished")
}
