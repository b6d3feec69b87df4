package trailers

import (
	"context"
	"log/slog"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
)

type TrailerFetcher interface {
	MovieTrailer(ctx context.Context, id string) (*backend.Envelope, error)
}

// Backend asks the primary API first; its data, when present, is the trailer URL.
type Backend struct {
	log     *slog.Logger
	fetcher TrailerFetcher
}

func NewBackend(log *slog.Logger, fetcher TrailerFetcher) *Backend {
	return &Backend{log: log, fetcher: fetcher}
}

func (b *Backend) Name() string { return "backend" }

func (b *Backend) Trailer(ctx context.Context, movie *models.Movie) (string, error) {
	env, err := b.fetcher.MovieTrailer(ctx, movie.ID.String())
	if err != nil {
		return "", err
	}
	url, err := backend.Decode[string](env)
	if err != nil || url == "" {
		return "", ErrUnavailable
	}
	return url, nil
}
