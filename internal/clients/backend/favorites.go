package backend

import (
	"context"
	"net/http"
)

func (c *Client) ListFavorites(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/favorites", requestOptions{Method: http.MethodGet}, true)
}

func (c *Client) AddFavorite(ctx context.Context, movieID string) (*Envelope, error) {
	return c.request(ctx, "/favorites", requestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"movieId": movieID},
	}, true)
}

func (c *Client) RemoveFavorite(ctx context.Context, movieID string) (*Envelope, error) {
	return c.request(ctx, "/favorites"+segment(movieID), requestOptions{Method: http.MethodDelete}, true)
}

func (c *Client) CheckFavorite(ctx context.Context, movieID string) (*Envelope, error) {
	return c.request(ctx, "/favorites/check"+segment(movieID), requestOptions{Method: http.MethodGet}, true)
}

func (c *Client) FavoritesStats(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/favorites/stats", requestOptions{Method: http.MethodGet}, true)
}

func (c *Client) ClearFavorites(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/favorites", requestOptions{Method: http.MethodDelete}, true)
}
