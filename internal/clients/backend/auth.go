package backend

import (
	"context"
	"net/http"
	"unicode/utf8"

	"samfilms/client/internal/lib/validator"
)

const minPasswordLength = 8

type RegisterInput struct {
	Nombres    string `json:"nombres" validate:"required"`
	Apellidos  string `json:"apellidos" validate:"required"`
	Edad       int    `json:"edad" validate:"gte=1,lte=120"`
	Correo     string `json:"correo" validate:"required,mailshape"`
	Contrasena string `json:"contrasena" validate:"required"`
}

type LoginInput struct {
	Correo     string `json:"correo" validate:"required,mailshape"`
	Contrasena string `json:"contrasena" validate:"required"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*Envelope, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	return c.request(ctx, "/users/register", requestOptions{Method: http.MethodPost, Body: in}, false)
}

func (c *Client) Login(ctx context.Context, in LoginInput) (*Envelope, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	return c.request(ctx, "/users/login", requestOptions{Method: http.MethodPost, Body: in}, false)
}

func (c *Client) Logout(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/users/logout", requestOptions{Method: http.MethodPost}, true)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*Envelope, error) {
	if !validator.IsMailShape(email) {
		return nil, NewValidationError("Correo electrónico inválido", map[string]string{"correo": "Correo electrónico inválido"})
	}
	return c.request(ctx, "/users/forgot-password", requestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"correo": email},
	}, false)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*Envelope, error) {
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		msg := "La contraseña debe tener al menos 8 caracteres"
		return nil, NewValidationError(msg, map[string]string{"nuevaContrasena": msg})
	}
	return c.request(ctx, "/users/reset-password", requestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token, "nuevaContrasena": newPassword},
	}, false)
}
