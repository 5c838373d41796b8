// Package fakeapi is an in-memory implementation of the goSocial GraphQL API.
//
// It dispatches on the operation name, which by convention matches the root field,
// so it understands exactly the documents the api package sends. It exists for
// tests and local development; it is not a GraphQL engine.
package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/jwt"
	"go.uber.org/zap"
)

var operationName = regexp.MustCompile(`^\s*(query|mutation)\s+(\w+)`)

type user struct {
	id           string
	email        string
	username     string
	passwordHash string
	createdAt    time.Time
}

// Request is a recorded incoming operation.
type Request struct {
	Operation     string
	Authorization string
	Variables     map[string]interface{}
}

// Option configures a [Server].
type Option func(*Server)

// WithClock overrides time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTokenTTL sets the lifetime of issued credentials (default 1h).
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.ttl = ttl }
}

// Server is an http.Handler serving the goSocial operations from memory.
type Server struct {
	mu       sync.Mutex
	users    map[string]*user
	posts    []*api.Post
	failNext map[string]string
	requests []Request

	tokens *jwt.Manager
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// New returns an empty server that signs credentials with secret.
func New(secret []byte, opts ...Option) (*Server, error) {
	s := &Server{
		users:    make(map[string]*user),
		failNext: make(map[string]string),
		ttl:      time.Hour,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	manager, err := jwt.NewManager(jwt.Config{
		TTL:           s.ttl,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    secret,
		Issuer:        "gosocial",
	})
	if err != nil {
		return nil, err
	}
	s.tokens = manager
	return s, nil
}

// FailNext makes the next call of operation fail with message.
func (s *Server) FailNext(operation, message string) {
	s.mu.Lock()
	s.failNext[operation] = message
	s.mu.Unlock()
}

// Requests returns every operation received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// IssueToken returns a valid credential for an existing user.
func (s *Server) IssueToken(username string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("user not found")
	}
	return s.tokens.Issue(subjectOf(u))
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   interface{}    `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

// errGraphQL is a resolver error reported in the errors list with HTTP 200.
type errGraphQL string

func (e errGraphQL) Error() string { return string(e) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, graphqlResponse{Errors: []graphqlError{{Message: "method not allowed"}}})
		return
	}

	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, graphqlResponse{Errors: []graphqlError{{Message: "invalid request body"}}})
		return
	}
	m := operationName.FindStringSubmatch(req.Query)
	if m == nil {
		writeJSON(w, http.StatusBadRequest, graphqlResponse{Errors: []graphqlError{{Message: "operation name required"}}})
		return
	}
	op := m[2]
	auth := r.Header.Get("Authorization")

	s.mu.Lock()
	s.requests = append(s.requests, Request{Operation: op, Authorization: auth, Variables: req.Variables})
	failure, fail := s.failNext[op]
	delete(s.failNext, op)
	s.mu.Unlock()

	s.logger.Debug("fakeapi operation", zap.String("operation", op))

	if fail {
		writeJSON(w, http.StatusOK, graphqlResponse{Errors: []graphqlError{{Message: failure}}})
		return
	}

	result, err := s.resolve(op, auth, vars(req.Variables))
	if err != nil {
		var gqlErr errGraphQL
		if errors.As(err, &gqlErr) {
			writeJSON(w, http.StatusOK, graphqlResponse{Errors: []graphqlError{{Message: gqlErr.Error()}}})
			return
		}
		s.logger.Error("fakeapi resolver failed", zap.String("operation", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, graphqlResponse{Errors: []graphqlError{{Message: "internal server error"}}})
		return
	}
	writeJSON(w, http.StatusOK, graphqlResponse{Data: map[string]interface{}{op: result}})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type vars map[string]interface{}

func (v vars) str(name string) string {
	s, _ := v[name].(string)
	return s
}

func (s *Server) authenticate(header string) (*user, error) {
	if header == "" {
		return nil, errGraphQL("Authorization header must be provided")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return nil, errGraphQL("Authentication token must be 'Bearer [token]'")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errGraphQL("Invalid/Expired token")
	}
	u, ok := s.users[claims.Username]
	if !ok {
		return nil, errGraphQL("Invalid/Expired token")
	}
	return u, nil
}
