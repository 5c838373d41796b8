package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSocial/jwt"
	"github.com/MrEthical07/goSocial/storage"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the credential is persisted under.
const DefaultKey = "jwtToken"

var (
	// ErrCredentialExpired is returned by Login when the identity is already expired.
	ErrCredentialExpired = errors.New("session: credential expired")
	// ErrInvalidCredential is returned by Login for an empty credential.
	ErrInvalidCredential = errors.New("session: invalid credential")
)

// EventKind classifies an [Event].
type EventKind uint8

const (
	// EventRestored: a valid persisted credential was loaded.
	EventRestored EventKind = iota + 1
	// EventExpired: a persisted credential was expired and discarded.
	EventExpired
	// EventMalformed: a persisted credential could not be decoded and was discarded.
	EventMalformed
	// EventLogin: Login accepted a new identity.
	EventLogin
	// EventLogout: Logout cleared the identity.
	EventLogout
)

func (k EventKind) String() string {
	switch k {
	case EventRestored:
		return "session_restored"
	case EventExpired:
		return "credential_expired"
	case EventMalformed:
		return "credential_malformed"
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Event describes a lifecycle change, for metrics and auditing.
type Event struct {
	Kind     EventKind
	Username string
	At       time.Time
	Err      error
}

// Option configures a [Store].
type Option func(*Store)

// WithKey overrides [DefaultKey].
func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventHook registers fn to receive lifecycle events. fn runs synchronously.
func WithEventHook(fn func(Event)) Option {
	return func(s *Store) {
		s.onEvent = fn
	}
}

type observer struct {
	id uint64
	fn func(State)
}

// Store owns the session [State] and keeps it in sync with the persisted credential.
//
// Mutations are serialized; observers are called on the mutating goroutine, in
// subscription order, while mutations are held off. Observers may read the store but
// must not call Login, Logout, or Reload synchronously.
type Store struct {
	storage storage.Storage
	key     string
	now     func() time.Time
	logger  *zap.Logger
	onEvent func(Event)

	mu sync.Mutex // serializes mutations and notification

	stateMu sync.RWMutex
	state   State

	obsMu     sync.Mutex
	observers []observer
	nextID    uint64
}

// Open creates a store on st and seeds it from the persisted credential. A
// malformed or expired credential is removed and the store starts Anonymous. Only
// storage read failures are returned.
func Open(ctx context.Context, st storage.Storage, opts ...Option) (*Store, error) {
	if st == nil {
		return nil, errors.New("session: nil storage")
	}
	s := &Store{
		storage: st,
		key:     DefaultKey,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ev, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.setState(state)
	s.emit(ev)

	return s, nil
}

// Key returns the storage key the credential is persisted under.
func (s *Store) Key() string { return s.key }

// Current returns the current state.
func (s *Store) Current() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Token returns the current raw credential, or "" when anonymous.
func (s *Store) Token() string {
	return s.Current().Token()
}

// Subscribe registers fn to be called with the new state after every change.
// The returned function cancels the subscription; it is safe to call twice.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.obsMu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Login persists token and makes id the current identity.
//
// An identity with an expiry at or before now is rejected with
// [ErrCredentialExpired]. A storage failure is returned and leaves the state as it was.
func (s *Store) Login(ctx context.Context, token string, id Identity) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if id.ExpiredAt(now) {
		return ErrCredentialExpired
	}
	if err := s.storage.Set(ctx, s.key, token); err != nil {
		return fmt.Errorf("session: persist credential: %w", err)
	}

	s.apply(LoginIntent{Token: token, Identity: id})
	s.emit(Event{Kind: EventLogin, Username: id.Username, At: now})
	s.logger.Debug("session authenticated", zap.String("username", id.Username))
	return nil
}

// LoginToken decodes token's claims and logs in with them. Decode failures wrap
// [jwt.ErrDecode].
func (s *Store) LoginToken(ctx context.Context, token string) error {
	claims, err := jwt.Decode(token)
	if err != nil {
		return err
	}
	return s.Login(ctx, token, IdentityFromClaims(claims))
}

// Logout removes the persisted credential and clears the identity. The in-memory
// identity is cleared even when the storage removal fails; that failure is returned.
// Logging out while Anonymous only repeats the removal: observers and the event
// hook are not called.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.Current()
	username := prev.Username()
	removeErr := s.storage.Remove(ctx, s.key)
	if removeErr != nil {
		s.logger.Warn("failed to remove persisted credential", zap.Error(removeErr))
		removeErr = fmt.Errorf("session: remove credential: %w", removeErr)
	}
	if !prev.Authenticated() {
		return removeErr
	}

	s.apply(LogoutIntent{})
	s.emit(Event{Kind: EventLogout, Username: username, At: s.now(), Err: removeErr})
	s.logger.Debug("session cleared", zap.String("username", username))
	return removeErr
}

// Reload re-reads the persisted credential with the same validation as Open and
// notifies observers when the state changed.
//
// When storage still holds the credential this store logged in with, only the
// expiry of the current identity is checked; the credential is not decoded again,
// so an identity supplied to Login survives the store's own change notifications.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.Current(); cur.Authenticated() {
		raw, err := s.storage.Get(ctx, s.key)
		if err == nil && raw == cur.Token() {
			return s.recheckExpiry(ctx, cur)
		}
	}

	next, ev, err := s.load(ctx)
	if err != nil {
		return err
	}
	if next.equal(s.Current()) {
		if ev.Kind == EventExpired || ev.Kind == EventMalformed {
			s.emit(ev)
		}
		return nil
	}
	s.setState(next)
	s.notify(next)
	s.emit(ev)
	return nil
}

// Follow reloads the store whenever w reports a change to the credential key. It
// blocks until ctx is done.
func (s *Store) Follow(ctx context.Context, w storage.Watcher) error {
	if w == nil {
		return errors.New("session: nil watcher")
	}
	return w.Watch(ctx, s.key, func() {
		if err := s.Reload(ctx); err != nil {
			s.logger.Warn("session reload failed", zap.Error(err))
		}
	})
}

func (s *Store) load(ctx context.Context) (State, Event, error) {
	now := s.now()

	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AnonymousState(), Event{}, nil
		}
		return State{}, Event{}, fmt.Errorf("session: read credential: %w", err)
	}

	claims, err := jwt.Decode(raw)
	if err != nil {
		s.logger.Debug("discarding malformed credential", zap.Error(err))
		s.discard(ctx)
		return AnonymousState(), Event{Kind: EventMalformed, At: now, Err: err}, nil
	}

	if claims.ExpiredAt(now) {
		s.logger.Debug("discarding expired credential",
			zap.String("username", claims.Username), zap.Time("expired_at", claims.Expiry()))
		s.discard(ctx)
		return AnonymousState(), Event{Kind: EventExpired, Username: claims.Username, At: now}, nil
	}

	id := IdentityFromClaims(claims)
	return AuthenticatedState(raw, id), Event{Kind: EventRestored, Username: id.Username, At: now}, nil
}

// recheckExpiry must be called with mu held.
func (s *Store) recheckExpiry(ctx context.Context, cur State) error {
	id, _ := cur.Identity()
	now := s.now()
	if !id.ExpiredAt(now) {
		return nil
	}
	s.logger.Debug("discarding expired credential",
		zap.String("username", id.Username), zap.Time("expired_at", id.ExpiresAt))
	s.discard(ctx)
	next := AnonymousState()
	s.setState(next)
	s.notify(next)
	s.emit(Event{Kind: EventExpired, Username: id.Username, At: now})
	return nil
}

func (s *Store) discard(ctx context.Context) {
	if err := s.storage.Remove(ctx, s.key); err != nil {
		s.logger.Warn("failed to remove invalid credential", zap.Error(err))
	}
}

// apply must be called with mu held.
func (s *Store) apply(intent Intent) {
	next := Reduce(s.Current(), intent)
	s.setState(next)
	s.notify(next)
}

func (s *Store) setState(next State) {
	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()
}

func (s *Store) notify(next State) {
	s.obsMu.Lock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(next)
	}
}

func (s *Store) emit(ev Event) {
	if ev.Kind == 0 || s.onEvent == nil {
		return
	}
	s.onEvent(ev)
}
