package goSocial

import (
	"context"
	"net/http"
	"time"

	"github.com/MrEthical07/goSocial/api"
	internalaudit "github.com/MrEthical07/goSocial/internal/audit"
	"github.com/MrEthical07/goSocial/session"
	"github.com/MrEthical07/goSocial/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a [Client]. Configure it during initialization, call Build
// once, and discard it.
type Builder struct {
	config Config

	storage    storage.Storage
	redis      redis.UniversalClient
	httpClient *http.Client
	logger     *zap.Logger
	auditSink  AuditSink
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage supplies a ready storage backend, overriding Config.Storage. The
// Client does not close it.
func (b *Builder) WithStorage(st storage.Storage) *Builder {
	b.storage = st
	return b
}

// WithRedis persists the credential through an existing Redis client using the
// prefix and TTL from Config.Storage. The Client does not close it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the HTTP client used for API calls. Its Timeout wins over
// Config.API.Timeout.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithLogger sets the logger shared by every component. The default discards.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets where audit events go when Config.Audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides time.Now for credential expiry checks and relative times.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	if !enabled {
		b.config.Metrics.EnableLatencyHistograms = false
	}
	return b
}

// Build validates the configuration, opens storage, restores any persisted
// session, and returns a ready Client. A malformed or expired persisted credential
// is discarded and the client starts signed out; only storage failures are returned.
func (b *Builder) Build(ctx context.Context) (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- STORAGE --------
	st, owned, err := b.openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:       cfg,
		logger:       logger,
		now:          now,
		storage:      st,
		ownedStorage: owned,
		backend:      backendName(st),
		metrics:      NewMetrics(cfg.Metrics),
	}
	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink, logger)

	// -------- SESSION --------
	sess, err := session.Open(ctx, st,
		session.WithKey(cfg.Session.TokenKey),
		session.WithClock(now),
		session.WithLogger(logger.Named("session")),
		session.WithEventHook(c.onSessionEvent),
	)
	if err != nil {
		c.audit.Close()
		if owned {
			_ = st.Close()
		}
		return nil, err
	}
	c.session = sess

	// -------- API --------
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}
	apiClient, err := api.New(api.Config{
		Endpoint:   cfg.API.Endpoint,
		HTTPClient: httpClient,
		Tokens:     api.TokenFunc(sess.Token),
		Logger:     logger.Named("api"),
		Observer:   c,
	})
	if err != nil {
		c.audit.Close()
		if owned {
			_ = st.Close()
		}
		return nil, err
	}
	c.api = apiClient

	if cfg.Session.Follow {
		c.startFollow()
	}

	b.built = true
	logger.Debug("client ready",
		zap.String("endpoint", cfg.API.Endpoint),
		zap.String("storage", c.backend),
		zap.Stringer("session", sess.Current().Status()))

	return c, nil
}

func (b *Builder) openStorage(ctx context.Context, cfg Config, logger *zap.Logger) (storage.Storage, bool, error) {
	if b.storage != nil {
		return b.storage, false, nil
	}
	if b.redis != nil {
		return storage.NewRedis(b.redis, cfg.Storage.RedisPrefix, cfg.Storage.RedisTTL), false, nil
	}
	st, err := storage.Open(ctx, cfg.Storage, logger.Named("storage"))
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}
