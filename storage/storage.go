package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable wraps backend I/O failures.
	ErrUnavailable = errors.New("storage: backend unavailable")
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage is a durable string key-value store. Remove is idempotent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by backends that can observe changes made outside the
// current process. Watch blocks until ctx is done, calling onChange each time the
// value under key may have changed.
type Watcher interface {
	Watch(ctx context.Context, key string, onChange func()) error
}

// Backend names accepted by [Config].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a backend for [Open].
type Config struct {
	Backend       string        `yaml:"backend"`
	Path          string        `yaml:"path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
}

// DefaultPath returns the per-user storage file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gosocial", "storage.json")
}

// Open builds the backend named by cfg. When the Redis backend cannot be reached
// it falls back to the file backend and logs a warning.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		logger.Debug("using in-memory storage")
		return NewMemory(), nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("%w: redis backend requires an address", ErrUnavailable)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			logger.Warn("redis storage unreachable, falling back to file storage",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
			return openFile(cfg, logger)
		}
		logger.Debug("using redis storage", zap.String("addr", cfg.RedisAddr))
		store := NewRedis(client, cfg.RedisPrefix, cfg.RedisTTL)
		store.owned = true
		return store, nil
	case "", BackendFile:
		return openFile(cfg, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

func openFile(cfg Config, logger *zap.Logger) (Storage, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	}
	logger.Debug("using file storage", zap.String("path", path))
	return NewFile(path)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
