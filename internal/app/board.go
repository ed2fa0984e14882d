// Package app wires the board's components from configuration. The HTTP
// server and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/nexusfind/backend/internal/config"
	"github.com/nexusfind/backend/internal/services"
	kvstore "github.com/nexusfind/backend/internal/storage"
)

// Board holds every long-lived component. Open does not subscribe the cache;
// callers that need live items call Cache.Subscribe.
type Board struct {
	Config   *config.Config
	Logger   *zap.Logger
	Identity *services.IdentityState
	Store    services.ItemStore
	Cache    *services.ItemCache
	Images   *services.ImageService
	Advisor  services.Advisor // nil when GEMINI_API_KEY is unset

	kv  kvstore.KV
	gcs *storage.Client
}

func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Board, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{Config: cfg, Logger: logger}

	kv, err := kvstore.NewKVFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	b.kv = kv
	b.Identity = services.NewIdentityState(kv)

	store, err := services.NewItemStoreFromConfig(ctx, cfg, logger)
	if err != nil {
		b.Close(ctx)
		return nil, fmt.Errorf("open item store: %w", err)
	}
	b.Store = store
	b.Cache = services.NewItemCache(store, b.Identity, logger)

	if cfg.GeminiAPIKey != "" {
		advisor, err := services.NewGenAIAdvisor(ctx, services.GenAIAdvisorOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, logger)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.Advisor = advisor
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI suggestions disabled")
	}

	var moderator services.ImageModerator
	if cfg.SafeSearchEnabled {
		ss, err := services.NewSafeSearch(ctx, logger, googleCredentials(cfg)...)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		moderator = ss
	}

	if cfg.StorageBucket != "" {
		gcs, err := storage.NewClient(ctx, googleCredentials(cfg)...)
		if err != nil {
			b.Close(ctx)
			return nil, fmt.Errorf("storage client: %w", err)
		}
		b.gcs = gcs
	}
	b.Images = services.NewImageService(b.gcs, cfg.StorageBucket, moderator, logger)

	logger.Info("board ready",
		zap.String("itemStore", cfg.ItemStore),
		zap.String("stateBackend", cfg.StateBackend),
		zap.Bool("advisor", b.Advisor != nil),
		zap.Bool("safesearch", moderator != nil),
		zap.String("bucket", cfg.StorageBucket))
	return b, nil
}

func googleCredentials(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseCredentialsJSON == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON))}
}

// Close stops the cache before the store it reads from.
func (b *Board) Close(ctx context.Context) error {
	var errs []error
	if b.Cache != nil {
		b.Cache.Close()
	}
	if b.Store != nil {
		if err := b.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close item store: %w", err))
		}
	}
	if b.gcs != nil {
		if err := b.gcs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage client: %w", err))
		}
	}
	if c, ok := b.kv.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close local state: %w", err))
		}
	}
	return errors.Join(errs...)
}
