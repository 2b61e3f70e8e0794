package main

import (
	"net/http"

	"go.uber.org/zap"

	"querychat/internal/api"
	"querychat/internal/config"
	"querychat/internal/db"
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

	handler := api.NewHandler(store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/conversations", handler.CreateConversation)
	mux.HandleFunc("/api/messages", handler.Messages)
	mux.HandleFunc("/api/options", handler.Options)
	mux.HandleFunc("/api/locations", handler.Locations)
	mux.HandleFunc("/api/items", handler.Items)

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
