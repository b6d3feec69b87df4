package backend

import (
	"context"
	"net/http"
)

type listParams struct {
	Limit int `schema:"limit,omitempty"`
}

// limitQuery encodes ?limit=N only for a positive limit.
func (c *Client) limitQuery(limit int) (requestOptions, error) {
	if limit < 0 {
		limit = 0
	}
	q, err := c.encodeQuery(listParams{Limit: limit})
	if err != nil {
		return requestOptions{}, err
	}
	return requestOptions{Method: http.MethodGet, Query: q}, nil
}

// ListMovies lists the catalog; limit <= 0 means no limit parameter.
func (c *Client) ListMovies(ctx context.Context, limit int) (*Envelope, error) {
	opts, err := c.limitQuery(limit)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, "/movies", opts, false)
}

func (c *Client) GetMovie(ctx context.Context, id string) (*Envelope, error) {
	return c.request(ctx, "/movies"+segment(id), requestOptions{Method: http.MethodGet}, false)
}

func (c *Client) SearchMovies(ctx context.Context, term string) (*Envelope, error) {
	return c.request(ctx, "/movies/search"+segment(term), requestOptions{Method: http.MethodGet}, false)
}

func (c *Client) MoviesByGenre(ctx context.Context, genre string, limit int) (*Envelope, error) {
	opts, err := c.limitQuery(limit)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, "/movies/genero"+segment(genre), opts, false)
}

// MovieTrailer returns an envelope whose data, when present, is the trailer URL.
func (c *Client) MovieTrailer(ctx context.Context, id string) (*Envelope, error) {
	return c.request(ctx, "/movies"+segment(id)+"/trailer", requestOptions{Method: http.MethodGet}, false)
}
