package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/config"
)

// NewItemStoreFromConfig opens the item store selected by cfg.ItemStore.
func NewItemStoreFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ItemStore, error) {
	switch cfg.ItemStore {
	case config.StoreMemory:
		return NewMemoryItemStore(), nil
	case config.StoreFirestore:
		return NewFirestoreItemStore(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON, logger)
	case config.StoreMongo:
		return NewMongoItemStore(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	default:
		return nil, fmt.Errorf("unknown item store %q", cfg.ItemStore)
	}
}
