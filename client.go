package goSocial

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSocial/api"
	internalaudit "github.com/MrEthical07/goSocial/internal/audit"
	"github.com/MrEthical07/goSocial/session"
	"github.com/MrEthical07/goSocial/storage"
	"github.com/MrEthical07/goSocial/view"
	"go.uber.org/zap"
)

// Client ties the session store, the API client, and the audit/metrics plumbing
// together. It is safe for concurrent use.
type Client struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	storage      storage.Storage
	ownedStorage bool
	backend      string

	session *session.Store
	api     *api.Client

	metrics *Metrics
	audit   *internalaudit.Dispatcher

	followCancel context.CancelFunc
	followDone   chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Session returns the session store.
func (c *Client) Session() *session.Store { return c.session }

// Current returns the current session state.
func (c *Client) Current() session.State { return c.session.Current() }

// API returns the GraphQL client. Requests carry the current credential.
func (c *Client) API() *api.Client { return c.api }

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.config }

// StorageBackend names the backend the credential is persisted in.
func (c *Client) StorageBackend() string { return c.backend }

// Login exchanges username and password for a credential and signs in with it.
func (c *Client) Login(ctx context.Context, username, password string) (session.Identity, error) {
	if c.closed.Load() {
		return session.Identity{}, ErrClientClosed
	}

	user, err := c.api.Login(ctx, username, password)
	if err != nil {
		c.fail(ctx, MetricLoginFailure, AuditLoginFailure, username, err)
		return session.Identity{}, err
	}
	if err := c.session.LoginToken(ctx, user.Token); err != nil {
		c.fail(ctx, MetricLoginFailure, AuditLoginFailure, username, err)
		return session.Identity{}, err
	}
	return c.Whoami()
}

// Register creates an account and signs in with the returned credential.
func (c *Client) Register(ctx context.Context, in api.RegisterInput) (session.Identity, error) {
	if c.closed.Load() {
		return session.Identity{}, ErrClientClosed
	}

	user, err := c.api.Register(ctx, in)
	if err != nil {
		c.fail(ctx, MetricRegisterFailure, AuditRegisterFailure, in.Username, err)
		return session.Identity{}, err
	}
	c.metrics.Inc(MetricRegisterSuccess)
	c.emitAudit(ctx, AuditEvent{EventType: AuditRegisterSuccess, Username: user.Username, Success: true})

	if err := c.session.LoginToken(ctx, user.Token); err != nil {
		c.fail(ctx, MetricLoginFailure, AuditLoginFailure, in.Username, err)
		return session.Identity{}, err
	}
	return c.Whoami()
}

// Logout signs out. The in-memory session is cleared even when removing the
// persisted credential fails; that failure is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.session.Logout(ctx)
}

// Whoami returns the signed-in identity, or [ErrNotAuthenticated].
func (c *Client) Whoami() (session.Identity, error) {
	id, ok := c.session.Current().Identity()
	if !ok {
		return session.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

// PostDetail returns the detail view for postID bound to this client's session.
func (c *Client) PostDetail(postID string, opts ...view.Option) *view.PostDetail {
	base := []view.Option{
		view.WithClock(c.now),
		view.WithLogger(c.logger.Named("view")),
	}
	return view.NewPostDetail(postID, c.session, c.api, append(base, opts...)...)
}

// MetricsSnapshot returns a point-in-time copy of the client's metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped because the buffer was
// full.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close stops following storage, flushes queued audit events, and closes storage
// the client opened itself. It is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.followCancel != nil {
			c.followCancel()
			<-c.followDone
		}
		c.audit.Close()
		if c.ownedStorage {
			c.closeErr = c.storage.Close()
		}
	})
	return c.closeErr
}

// ObserveOperation implements [api.Observer].
func (c *Client) ObserveOperation(op api.Operation, took time.Duration, err error) {
	switch {
	case op.Kind == api.KindMutation && err == nil:
		c.metrics.Inc(MetricMutationSuccess)
	case op.Kind == api.KindMutation:
		c.metrics.Inc(MetricMutationFailure)
	case err == nil:
		c.metrics.Inc(MetricQuerySuccess)
	default:
		c.metrics.Inc(MetricQueryFailure)
	}
	c.metrics.Observe(MetricRequestLatency, took)
}

func (c *Client) startFollow() {
	w, ok := c.storage.(storage.Watcher)
	if !ok {
		c.logger.Warn("storage backend cannot report changes; session follow disabled",
			zap.String("storage", c.backend))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.followCancel = cancel
	c.followDone = make(chan struct{})
	go func() {
		defer close(c.followDone)
		if err := c.session.Follow(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("session follow stopped", zap.Error(err))
		}
	}()
}

func backendName(st storage.Storage) string {
	switch st.(type) {
	case *storage.Memory:
		return storage.BackendMemory
	case *storage.File:
		return storage.BackendFile
	case *storage.Redis:
		return storage.BackendRedis
	default:
		return "custom"
	}
}
