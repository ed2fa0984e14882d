package storage

import (
	"fmt"

	"github.com/nexusfind/backend/internal/config"
)

// NewKVFromConfig opens the local state medium selected by cfg.StateBackend.
func NewKVFromConfig(cfg *config.Config) (KV, error) {
	switch cfg.StateBackend {
	case config.StateFile:
		return NewFileKV(cfg.StateFile)
	case config.StateRedis:
		return NewRedisKV(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
