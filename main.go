package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Martin-Chauke/Legend-Cut/internal/config"
	"github.com/Martin-Chauke/Legend-Cut/internal/haircuts"
	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
	"github.com/Martin-Chauke/Legend-Cut/internal/pipeline"
	"github.com/Martin-Chauke/Legend-Cut/internal/server"
	"github.com/Martin-Chauke/Legend-Cut/internal/session"
	"github.com/Martin-Chauke/Legend-Cut/pkg/log"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment")
	}

	cfg := config.Load()

	detector := landmarks.NewClient(cfg.DetectorURL, cfg.DetectorTimeout, logger)
	if err := detector.Health(); err != nil {
		logger.WithError(err).Warn("Landmark detector is not reachable, frames will pass through until it comes up")
	}

	store := haircuts.NewStore(cfg.AssetsDir, logger)
	cache := haircuts.NewCache(logger)
	sessions := session.NewStore(cfg.SessionTTL, cfg.SessionMerge, logger)
	defer sessions.Close()

	processor := pipeline.New(store, cache, detector, sessions, logger)
	valid := server.NewValidator()
	handler := server.NewHandler(logger, valid, processor, store, sessions, detector, cfg.JPEGQuality)

	srv, err := server.NewServer(
		server.WithFiber(server.NewFiber()),
		server.WithLogger(logger),
		server.WithValidator(valid),
		server.WithConfig(cfg),
		server.WithHandler(handler),
	)
	if err != nil {
		logger.Fatal(err)
	}

	srv.RegisterRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithField("port", cfg.Port).Info("Legend Cut started")

	<-sigChan
	logger.Info("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("Shutdown failed")
	}
}
