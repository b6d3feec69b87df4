// Package trailers locates a trailer URL for a movie through third-party providers.
// Every failure reads as ErrUnavailable to callers.
package trailers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"samfilms/client/internal/domain/models"
)

var (
	ErrUnavailable = errors.New("trailer unavailable")
	ErrDisabled    = errors.New("provider disabled")
)

type Provider interface {
	Name() string
	Trailer(ctx context.Context, movie *models.Movie) (string, error)
}

// Options configure a provider. An empty APIKey disables it.
type Options struct {
	APIKey  string
	BaseURL string
	Rps     float64
	Burst   int
	Timeout time.Duration
}

type base struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func newBase(log *slog.Logger, opts Options, defaultURL string) base {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultURL
	}
	if opts.Rps <= 0 {
		opts.Rps = 2
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return base{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.Rps), opts.Burst),
		log:     log,
	}
}

func (b *base) enabled() bool {
	return b.opts.APIKey != ""
}

// do waits for the limiter and sends req. Non-2xx statuses are errors.
func (b *base) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &statusError{status: resp.StatusCode}
	}
	return resp, nil
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.status)
}

// Chain asks each provider in turn and returns the first trailer found.
type Chain struct {
	log       *slog.Logger
	providers []Provider
}

func NewChain(log *slog.Logger, providers ...Provider) *Chain {
	return &Chain{log: log, providers: providers}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Trailer(ctx context.Context, movie *models.Movie) (string, error) {
	const op = "trailers.Chain.Trailer"
	log := c.log.With("op", op, "movie", movie.ID.String())
	for _, p := range c.providers {
		url, err := p.Trailer(ctx, movie)
		if err == nil && url != "" {
			log.Debug("trailer found", "provider", p.Name())
			return url, nil
		}
		if err != nil && !errors.Is(err, ErrDisabled) {
			log.Warn("provider failed", "provider", p.Name(), "errMsg", err.Error())
		}
		if ctx.Err() != nil {
			break
		}
	}
	return "", ErrUnavailable
}
