package goSocial

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSocial/session"
	"github.com/MrEthical07/goSocial/storage"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration. Build one with [DefaultConfig] and
// adjust it, or load it with [LoadConfigFile] and [LoadConfigFromEnv].
type Config struct {
	API     APIConfig      `yaml:"api"`
	Session SessionConfig  `yaml:"session"`
	Storage storage.Config `yaml:"storage"`
	Audit   AuditConfig    `yaml:"audit"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the GraphQL endpoint.
type APIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls where the credential is persisted and whether the client
// follows changes other processes make to it.
type SessionConfig struct {
	TokenKey string `yaml:"token_key"`
	Follow   bool   `yaml:"follow"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process metric collection.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// DefaultConfig returns a configuration for a local development API with the file
// storage backend.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Endpoint: "http://localhost:5000/",
			Timeout:  15 * time.Second,
		},
		Session: SessionConfig{
			TokenKey: session.DefaultKey,
		},
		Storage: storage.Config{
			Backend:     storage.BackendFile,
			Path:        storage.DefaultPath(),
			RedisPrefix: "gs",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports the first invalid field, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	// API
	endpoint := strings.TrimSpace(c.API.Endpoint)
	if endpoint == "" {
		return invalid("API Endpoint must be set")
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("API Endpoint must be an http(s) URL")
	}
	if c.API.Timeout <= 0 {
		return invalid("API Timeout must be > 0")
	}

	// Session
	if strings.TrimSpace(c.Session.TokenKey) == "" {
		return invalid("Session TokenKey must be set")
	}

	// Storage
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case storage.BackendMemory:
	case "", storage.BackendFile:
	case storage.BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return invalid("Storage RedisAddr must be set for the redis backend")
		}
		if c.Storage.RedisTTL < 0 {
			return invalid("Storage RedisTTL must be >= 0")
		}
	default:
		return invalid("Storage Backend must be 'memory', 'file' or 'redis'")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when Audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// LintWarning is a valid but questionable setting.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that validate but are unlikely to be intended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if u, err := url.Parse(c.API.Endpoint); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		ws = append(ws, LintWarning{
			Code:    "endpoint_plaintext",
			Message: "credentials are sent over plain HTTP to a non-local endpoint",
		})
	}
	if c.API.Timeout > 2*time.Minute {
		ws = append(ws, LintWarning{
			Code:    "timeout_long",
			Message: "API Timeout above 2m leaves views pending for a long time",
		})
	}
	if strings.EqualFold(c.Storage.Backend, storage.BackendMemory) {
		ws = append(ws, LintWarning{
			Code:    "storage_not_durable",
			Message: "memory storage forgets the session when the process exits",
		})
		if c.Session.Follow {
			ws = append(ws, LintWarning{
				Code:    "follow_unsupported",
				Message: "memory storage cannot report changes; Session Follow has no effect",
			})
		}
	}
	if strings.EqualFold(c.Storage.Backend, storage.BackendRedis) && c.Storage.RedisTTL == 0 {
		ws = append(ws, LintWarning{
			Code:    "redis_no_ttl",
			Message: "credentials persisted in Redis never expire from the server side",
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_blocking",
			Message: "a slow audit sink will stall session changes",
		})
	}

	return ws
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// LoadConfigFile decodes a YAML file over base. Fields missing from the file keep
// base's values.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Environment variables read by [LoadConfigFromEnv].
const (
	EnvEndpoint      = "GOSOCIAL_ENDPOINT"
	EnvTimeout       = "GOSOCIAL_TIMEOUT"
	EnvStorage       = "GOSOCIAL_STORAGE"
	EnvStoragePath   = "GOSOCIAL_STORAGE_PATH"
	EnvRedisAddr     = "GOSOCIAL_REDIS_ADDR"
	EnvRedisPassword = "GOSOCIAL_REDIS_PASSWORD"
	EnvRedisPrefix   = "GOSOCIAL_REDIS_PREFIX"
	EnvTokenKey      = "GOSOCIAL_TOKEN_KEY"
	EnvMetrics       = "GOSOCIAL_METRICS"
)

// LoadConfigFromEnv loads dotenv files into the process environment, then applies
// the GOSOCIAL_* variables over base. With no files it loads ".env" if present.
// Variables already set in the environment win over dotenv files.
func LoadConfigFromEnv(base Config, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return applyEnv(base, os.LookupEnv)
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvEndpoint, &cfg.API.Endpoint)
	str(EnvStorage, &cfg.Storage.Backend)
	str(EnvStoragePath, &cfg.Storage.Path)
	str(EnvRedisAddr, &cfg.Storage.RedisAddr)
	str(EnvRedisPassword, &cfg.Storage.RedisPassword)
	str(EnvRedisPrefix, &cfg.Storage.RedisPrefix)
	str(EnvTokenKey, &cfg.Session.TokenKey)

	if v, ok := lookup(EnvTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := lookup(EnvMetrics); ok && strings.TrimSpace(v) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMetrics, err)
		}
		cfg.Metrics.Enabled = enabled
		if !enabled {
			cfg.Metrics.EnableLatencyHistograms = false
		}
	}
	return cfg, nil
}
