package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docrank/internal/api"
	"docrank/internal/config"
	"docrank/internal/embedding"
	"docrank/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	cfg := config.Load()
	if path := os.Getenv("DOCRANK_CONFIG"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			log.Error("failed to load config file", "path", path, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	emb, err := embedding.NewFromConfig(cfg)
	if err != nil {
		log.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	stats := embedding.NewStats(15 * time.Minute)
	instrumented := embedding.Instrument(emb, stats)

	orch := pipeline.NewOrchestrator(cfg, instrumented, log)
	orch.Start(context.Background())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(orch, stats, log, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting",
			"port", cfg.Port,
			"embed_provider", cfg.EmbedProvider,
			"collection_workers", cfg.CollectionWorkers,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	orch.Stop()
	log.Info("server stopped")
}
