package session

import (
	"time"

	"github.com/MrEthical07/goSocial/jwt"
)

// Identity is the decoded claims of a credential.
type Identity struct {
	UserID    string
	Username  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityFromClaims projects decoded credential claims onto an Identity.
func IdentityFromClaims(c *jwt.Claims) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		UserID:    c.UserID,
		Username:  c.Username,
		Email:     c.Email,
		IssuedAt:  c.Issued(),
		ExpiresAt: c.Expiry(),
	}
}

// ExpiredAt reports whether the identity has an expiry at or before now. An
// identity without an expiry never expires on the client.
func (i Identity) ExpiredAt(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !i.ExpiresAt.After(now)
}

// Status is the session state machine's discriminator.
type Status uint8

const (
	// Anonymous means nobody is logged in.
	Anonymous Status = iota
	// Authenticated means an identity and its credential are held.
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is an immutable snapshot of the session. The zero value is Anonymous.
type State struct {
	identity *Identity
	token    string
}

// AnonymousState returns the state with no identity.
func AnonymousState() State {
	return State{}
}

// AuthenticatedState returns the state holding id and its raw credential.
func AuthenticatedState(token string, id Identity) State {
	return State{identity: &id, token: token}
}

// Status returns Anonymous or Authenticated.
func (s State) Status() Status {
	if s.identity == nil {
		return Anonymous
	}
	return Authenticated
}

// Authenticated is shorthand for s.Status() == Authenticated.
func (s State) Authenticated() bool {
	return s.identity != nil
}

// Identity returns a copy of the held identity.
func (s State) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Username returns the logged-in username, or "" when anonymous.
func (s State) Username() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.Username
}

// Token returns the raw credential, or "" when anonymous.
func (s State) Token() string {
	return s.token
}

func (s State) equal(o State) bool {
	if s.Authenticated() != o.Authenticated() || s.token != o.token {
		return false
	}
	if s.identity == nil {
		return true
	}
	a, b := *s.identity, *o.identity
	return a.UserID == b.UserID &&
		a.Username == b.Username &&
		a.Email == b.Email &&
		a.IssuedAt.Equal(b.IssuedAt) &&
		a.ExpiresAt.Equal(b.ExpiresAt)
}
