package backend

import (
	"context"
	"net/http"
)

type UpdateProfileInput struct {
	Nombres    *string `json:"nombres,omitempty" validate:"omitempty,min=1"`
	Apellidos  *string `json:"apellidos,omitempty" validate:"omitempty,min=1"`
	Edad       *int    `json:"edad,omitempty" validate:"omitempty,gte=1,lte=120"`
	Contrasena *string `json:"contrasena,omitempty" validate:"omitempty,min=8"`
}

func (c *Client) GetProfile(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/users/me", requestOptions{Method: http.MethodGet}, true)
}

func (c *Client) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Envelope, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	return c.request(ctx, "/users/me", requestOptions{Method: http.MethodPut, Body: in}, true)
}

func (c *Client) DeleteAccount(ctx context.Context, password string) (*Envelope, error) {
	return c.request(ctx, "/users/me", requestOptions{
		Method: http.MethodDelete,
		Body:   map[string]string{"password": password},
	}, true)
}

func (c *Client) ListUsers(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/users", requestOptions{Method: http.MethodGet}, false)
}
