package backend

import (
	"context"
	"net/http"

	"samfilms/client/internal/domain/movieref"
)

type ratingInput struct {
	Rating int `validate:"gte=1,lte=5"`
}

type userRatingParams struct {
	PeliculaID string `schema:"pelicula_id,omitempty"`
	TmdbID     int64  `schema:"tmdb_id,omitempty"`
}

func errInvalidRef() error {
	return NewValidationError("", map[string]string{"pelicula_id": "Identificador inválido"})
}

// SubmitRating creates or overwrites the caller's rating for the movie.
func (c *Client) SubmitRating(ctx context.Context, ref movieref.Ref, value int) (*Envelope, error) {
	if err := c.validate(ratingInput{Rating: value}); err != nil {
		return nil, err
	}
	if ref.IsZero() {
		return nil, errInvalidRef()
	}
	body := ref.Fields()
	body["rating"] = value
	return c.request(ctx, "/ratings", requestOptions{Method: http.MethodPost, Body: body}, true)
}

func (c *Client) UserRating(ctx context.Context, ref movieref.Ref) (*Envelope, error) {
	var params userRatingParams
	if id, ok := ref.Internal(); ok {
		params.PeliculaID = id
	} else if n, ok := ref.External(); ok {
		params.TmdbID = n
	} else {
		return nil, errInvalidRef()
	}
	q, err := c.encodeQuery(params)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, "/ratings/user", requestOptions{Method: http.MethodGet, Query: q}, true)
}

// RatingAverage reads the aggregate by whichever identifier kind ref carries.
func (c *Client) RatingAverage(ctx context.Context, ref movieref.Ref) (*Envelope, error) {
	var endpoint string
	switch ref.Kind() {
	case movieref.KindInternal:
		endpoint = "/ratings/average/pelicula" + segment(ref.String())
	case movieref.KindExternal:
		endpoint = "/ratings/average/tmdb" + segment(ref.String())
	default:
		return nil, errInvalidRef()
	}
	return c.request(ctx, endpoint, requestOptions{Method: http.MethodGet}, false)
}
