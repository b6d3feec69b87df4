// Package guard decides whether a route may be shown for the current session.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"samfilms/client/internal/domain/models"
)

const LoginRoute = "/inicio-sesion"

var ErrUnauthenticated = errors.New("Debes iniciar sesión para continuar")

type Route struct {
	Path      string
	Name      string
	Protected bool
}

var Routes = []Route{
	{Path: "/", Name: "Inicio"},
	{Path: "/sobre-nosotros", Name: "Sobre nosotros"},
	{Path: LoginRoute, Name: "Iniciar sesión"},
	{Path: "/registro", Name: "Registro"},
	{Path: "/mapa-sitio", Name: "Mapa del sitio"},
	{Path: "/peliculas", Name: "Películas", Protected: true},
	{Path: "/perfil", Name: "Perfil", Protected: true},
}

// Find matches path against Routes, ignoring a trailing slash and any query.
func Find(path string) (Route, bool) {
	path, _, _ = strings.Cut(path, "?")
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

type SessionReader interface {
	LoadToken(ctx context.Context) (string, error)
	LoadUser(ctx context.Context) (*models.User, error)
}

type Principal struct {
	Token string
	User  *models.User
}

type Guard struct {
	log     *slog.Logger
	session SessionReader
}

func New(log *slog.Logger, session SessionReader) *Guard {
	return &Guard{log: log, session: session}
}

// Require reads the session fresh and fails with ErrUnauthenticated unless both a
// token and a user are stored.
func (g *Guard) Require(ctx context.Context) (*Principal, error) {
	const op = "guard.Guard.Require"
	log := g.log.With("op", op)
	token, err := g.session.LoadToken(ctx)
	if err != nil {
		log.Error("Error reading token", "errMsg", err.Error())
		return nil, err
	}
	user, err := g.session.LoadUser(ctx)
	if err != nil {
		log.Error("Error reading user", "errMsg", err.Error())
		return nil, err
	}
	if token == "" || user == nil {
		log.Debug("no session")
		return nil, ErrUnauthenticated
	}
	return &Principal{Token: token, User: user}, nil
}

// Check returns the route to redirect to, or "" when path may be shown.
func (g *Guard) Check(ctx context.Context, path string) (string, error) {
	route, ok := Find(path)
	if !ok || !route.Protected {
		return "", nil
	}
	if _, err := g.Require(ctx); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return LoginRoute, nil
		}
		return "", err
	}
	return "", nil
}
