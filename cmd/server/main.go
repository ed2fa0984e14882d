package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/app"
	"github.com/nexusfind/backend/internal/config"
	"github.com/nexusfind/backend/internal/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	board, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	subCtx, stopSub := context.WithCancel(ctx)
	defer stopSub()
	if err := board.Cache.Subscribe(subCtx); err != nil {
		logger.Warn("serving demo items until restart", zap.Error(err))
	}

	server := &http.Server{
		Addr: cfg.ServerAddress,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Cache:          board.Cache,
			Identity:       board.Identity,
			Images:         board.Images,
			Advisor:        board.Advisor,
			CORSOrigin:     cfg.CORSOrigin,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: /api/items/stream holds the response open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("NexusFind API listening", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stream handlers end when the cache closes its watchers.
	board.Cache.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	if err := board.Close(shutdownCtx); err != nil {
		logger.Warn("close error", zap.Error(err))
	}
}
