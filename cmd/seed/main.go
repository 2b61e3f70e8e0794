package main

import (
	"go.uber.org/zap"

	"querychat/internal/config"
	"querychat/internal/db"
	"querychat/internal/seed"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	store, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("db_path", cfg.DBPath))
	}
	defer store.Close()

	importer := seed.NewImporter(store, logger)
	if err := importer.Import(cfg.DataDir); err != nil {
		logger.Fatal("failed to import catalog",
			zap.Error(err),
			zap.String("data_dir", cfg.DataDir))
	}
}
