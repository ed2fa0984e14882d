package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Item store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

// Local state backends.
const (
	StateFile  = "file"
	StateRedis = "redis"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type Config struct {
	ServerAddress string `toml:"server_address"`

	ItemStore               string `toml:"item_store"`
	FirebaseProjectID       string `toml:"firebase_project_id"`
	FirebaseCredentialsJSON string `toml:"firebase_credentials_json"`
	MongoURI                string `toml:"mongo_uri"`
	MongoDB                 string `toml:"mongo_db"`

	StateBackend string `toml:"state_backend"`
	StateFile    string `toml:"state_file"`
	RedisURL     string `toml:"redis_url"`

	GeminiAPIKey string `toml:"gemini_api_key"`
	GeminiModel  string `toml:"gemini_model"`

	StorageBucket     string `toml:"storage_bucket"`
	SafeSearchEnabled bool   `toml:"safesearch_enabled"`
	MaxUploadSizeMB   int64  `toml:"max_upload_size_mb"`

	CORSOrigin string `toml:"cors_origin"`
	LogLevel   string `toml:"log_level"`
}

func defaults() *Config {
	return &Config{
		ServerAddress:   ":8080",
		ItemStore:       StoreFirestore,
		MongoDB:         "nexusfind",
		StateBackend:    StateFile,
		StateFile:       defaultStateFile(),
		GeminiModel:     DefaultGeminiModel,
		MaxUploadSizeMB: 10,
		CORSOrigin:      "*",
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, then the TOML file at path (or
// $NEXUSFIND_CONFIG when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("NEXUSFIND_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.ItemStore = strings.ToLower(getEnv("ITEM_STORE", cfg.ItemStore))
	cfg.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", cfg.FirebaseProjectID)
	cfg.FirebaseCredentialsJSON = getEnv("FIREBASE_CREDENTIALS_JSON", cfg.FirebaseCredentialsJSON)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.StateBackend = strings.ToLower(getEnv("STATE_BACKEND", cfg.StateBackend))
	cfg.StateFile = expandHome(getEnv("STATE_FILE", cfg.StateFile))
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.StorageBucket = getEnv("STORAGE_BUCKET", cfg.StorageBucket)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))

	var err error
	if cfg.SafeSearchEnabled, err = getEnvBool("SAFESEARCH_ENABLED", cfg.SafeSearchEnabled); err != nil {
		return nil, err
	}
	if cfg.MaxUploadSizeMB, err = getEnvInt("MAX_UPLOAD_SIZE_MB", cfg.MaxUploadSizeMB); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ItemStore {
	case StoreMemory, StoreFirestore:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGO_URI is required when ITEM_STORE=mongo")
		}
	default:
		return fmt.Errorf("config: unknown ITEM_STORE %q", c.ItemStore)
	}

	switch c.StateBackend {
	case StateFile:
	case StateRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required when STATE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.StateBackend)
	}

	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_SIZE_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the multipart body limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}

// NewLogger builds the process logger: production JSON output, or the
// development console encoder at debug level when LOG_LEVEL=debug.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogLevel == "debug" {
		return zap.NewDevelopmentConfig().Build()
	}

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nexusfind", "state.json")
	}
	return filepath.Join(home, ".nexusfind", "state.json")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
