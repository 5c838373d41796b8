package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

var (
	// ErrRemote marks errors reported by the API in the GraphQL errors list.
	ErrRemote = errors.New("api: remote error")
	// ErrTransport marks failures that kept a request from completing.
	ErrTransport = errors.New("api: transport error")
	// ErrInvalidInput is returned before any request is sent.
	ErrInvalidInput = errors.New("api: invalid input")
)

// OperationError reports a failed operation.
type OperationError struct {
	Operation string
	Message   string
	Err       error
}

func (e *OperationError) Error() string {
	return "api: " + e.Operation + ": " + e.Message
}

func (e *OperationError) Unwrap() error { return e.Err }

// TokenSource supplies the credential sent with each request. An empty token sends
// no Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to [TokenSource].
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Observer is told about every completed operation.
type Observer interface {
	ObserveOperation(op Operation, took time.Duration, err error)
}

// Config configures a [Client].
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *zap.Logger
	Observer   Observer
}

// Client sends goSocial operations. It is safe for concurrent use.
type Client struct {
	gql      *graphql.Client
	logger   *zap.Logger
	observer Observer
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("api: endpoint is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authed := *httpClient
	authed.Transport = &bearerTransport{base: httpClient.Transport, tokens: cfg.Tokens}

	return &Client{
		gql:      graphql.NewClient(endpoint, graphql.WithHTTPClient(&authed)),
		logger:   logger.With(zap.String("endpoint", endpoint)),
		observer: cfg.Observer,
	}, nil
}

// Run sends op with vars and decodes the response data into out.
func (c *Client) Run(ctx context.Context, op Operation, vars map[string]interface{}, out interface{}) error {
	req := graphql.NewRequest(op.Document)
	for k, v := range vars {
		req.Var(k, v)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, out)
	took := time.Since(start)
	if err != nil {
		err = classify(ctx, op, err)
	}

	if c.observer != nil {
		c.observer.ObserveOperation(op, took, err)
	}
	if err != nil {
		c.logger.Debug("graphql operation failed",
			zap.String("operation", op.Name), zap.Stringer("kind", op.Kind),
			zap.Duration("took", took), zap.Error(err))
		return err
	}
	c.logger.Debug("graphql operation",
		zap.String("operation", op.Name), zap.Stringer("kind", op.Kind), zap.Duration("took", took))
	return nil
}

const (
	remotePrefix = "graphql: "
	statusPrefix = "graphql: server returned a non-200 status code"
)

// bearerTransport attaches the current credential to every outgoing request.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.tokens == nil {
		return base.RoundTrip(r)
	}
	token := t.tokens.Token()
	if token == "" {
		return base.RoundTrip(r)
	}
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(r)
}

func classify(ctx context.Context, op Operation, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &OperationError{Operation: op.Name, Message: ctxErr.Error(), Err: ctxErr}
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, statusPrefix):
		return &OperationError{Operation: op.Name, Message: strings.TrimPrefix(msg, remotePrefix), Err: ErrTransport}
	case strings.HasPrefix(msg, remotePrefix):
		return &OperationError{Operation: op.Name, Message: strings.TrimPrefix(msg, remotePrefix), Err: ErrRemote}
	default:
		return &OperationError{Operation: op.Name, Message: msg, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
}

func requireID(op Operation, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return &OperationError{Operation: op.Name, Message: name + " is required", Err: ErrInvalidInput}
	}
	return nil
}
