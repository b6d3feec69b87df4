package backend

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"samfilms/client/internal/lib/validator"
)

const DefaultBaseURL = "http://localhost:3000/api/v1"

// TokenSource yields the current auth token, or "" when there is none.
type TokenSource interface {
	Token(ctx context.Context) string
}

type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	log       *slog.Logger
	validator *govalidator.Validate
	query     *schema.Encoder
}

/*
New creates a Client rooted at baseURL.

tokens may be nil, in which case authenticated calls go out without an
Authorization header. A zero timeout leaves requests unbounded; callers can still
bound a call through its context.
*/
func New(log *slog.Logger, baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = TokenFunc(func(context.Context) string { return "" })
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		tokens:    tokens,
		log:       log,
		validator: validator.New(),
		query:     schema.NewEncoder(),
	}
}

// WithHTTPClient swaps the underlying transport, e.g. for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health pings the service root (the base URL without its /api/v1 suffix).
// It never fails: any error reads as unavailable.
func (c *Client) Health(ctx context.Context) bool {
	const op = "backend.Client.Health"
	url := strings.TrimSuffix(c.baseURL, "/api/v1") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("health check failed", "op", op, "errMsg", err.Error())
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) validate(obj any) error {
	if errs := validator.ValidateStruct(c.validator, obj); errs != nil {
		return NewValidationError("", errs)
	}
	return nil
}
