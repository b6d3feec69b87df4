package backend

import (
	"context"
	"net/http"
	"strings"

	"samfilms/client/internal/domain/movieref"
)

type CreateCommentInput struct {
	UsuarioID string
	Contenido string
	Ref       movieref.Ref
}

func (c *Client) ListComments(ctx context.Context) (*Envelope, error) {
	return c.request(ctx, "/comments", requestOptions{Method: http.MethodGet}, false)
}

func (c *Client) CommentsByMovie(ctx context.Context, movieID string) (*Envelope, error) {
	return c.request(ctx, "/comments/movie"+segment(movieID), requestOptions{Method: http.MethodGet}, false)
}

func (c *Client) CommentsByUser(ctx context.Context, userID string) (*Envelope, error) {
	return c.request(ctx, "/comments/user"+segment(userID), requestOptions{Method: http.MethodGet}, false)
}

func (c *Client) CreateComment(ctx context.Context, in CreateCommentInput) (*Envelope, error) {
	fields := map[string]string{}
	if in.UsuarioID == "" {
		fields["usuario_id"] = "Este campo es obligatorio"
	}
	if strings.TrimSpace(in.Contenido) == "" {
		fields["contenido"] = "Este campo es obligatorio"
	}
	if in.Ref.IsZero() {
		fields["pelicula_id"] = "Identificador inválido"
	}
	if len(fields) > 0 {
		return nil, NewValidationError("", fields)
	}
	body := in.Ref.Fields()
	body["usuario_id"] = in.UsuarioID
	body["contenido"] = in.Contenido
	return c.request(ctx, "/comments", requestOptions{Method: http.MethodPost, Body: body}, true)
}

func (c *Client) UpdateComment(ctx context.Context, id, contenido, usuarioID string) (*Envelope, error) {
	if strings.TrimSpace(contenido) == "" {
		return nil, NewValidationError("", map[string]string{"contenido": "Este campo es obligatorio"})
	}
	return c.request(ctx, "/comments"+segment(id), requestOptions{
		Method: http.MethodPut,
		Body:   map[string]string{"contenido": contenido, "usuario_id": usuarioID},
	}, true)
}

func (c *Client) DeleteComment(ctx context.Context, id, usuarioID string) (*Envelope, error) {
	return c.request(ctx, "/comments"+segment(id), requestOptions{
		Method: http.MethodDelete,
		Body:   map[string]string{"usuario_id": usuarioID},
	}, true)
}
