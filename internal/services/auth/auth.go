package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/validator"
)

type Backend interface {
	Register(ctx context.Context, in backend.RegisterInput) (*backend.Envelope, error)
	Login(ctx context.Context, in backend.LoginInput) (*backend.Envelope, error)
	Logout(ctx context.Context) (*backend.Envelope, error)
	ForgotPassword(ctx context.Context, email string) (*backend.Envelope, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*backend.Envelope, error)
}

type SessionStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
}

type AuthService struct {
	log     *slog.Logger
	api     Backend
	session SessionStore
}

func New(log *slog.Logger, api Backend, session SessionStore) *AuthService {
	return &AuthService{
		log:     log,
		api:     api,
		session: session,
	}
}

type RegisterForm struct {
	Nombres      string
	Apellidos    string
	Edad         int
	Correo       string
	Contrasena   string
	Confirmacion string
}

// Register checks the confirmation locally before anything is sent.
func (a *AuthService) Register(ctx context.Context, form RegisterForm) (string, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "email", form.Correo)
	if form.Contrasena != form.Confirmacion {
		log.Info("password confirmation mismatch")
		return "", ErrPasswordMismatch
	}
	env, err := a.api.Register(ctx, backend.RegisterInput{
		Nombres:    strings.TrimSpace(form.Nombres),
		Apellidos:  strings.TrimSpace(form.Apellidos),
		Edad:       form.Edad,
		Correo:     strings.TrimSpace(form.Correo),
		Contrasena: form.Contrasena,
	})
	if err != nil {
		log.Error("Error calling Backend.Register", "errMsg", err.Error())
		return "", err
	}
	if err := backend.Check(env); err != nil {
		log.Info("registration rejected", "errMsg", err.Error())
		return "", err
	}
	return messageOr(env, "Registro exitoso"), nil
}

// Login stores the returned token and user in the session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "email", email)
	env, err := a.api.Login(ctx, backend.LoginInput{Correo: strings.TrimSpace(email), Contrasena: password})
	if err != nil {
		log.Error("Error calling Backend.Login", "errMsg", err.Error())
		return nil, err
	}
	data, err := backend.Decode[models.AuthData](env)
	if err != nil {
		if errors.Is(err, backend.ErrNoData) {
			return nil, ErrInvalidAuthData
		}
		log.Info("login rejected", "errMsg", err.Error())
		return nil, err
	}
	if data.Token == "" || data.User == nil {
		log.Error("login response without token or user")
		return nil, ErrInvalidAuthData
	}
	if err := a.session.Save(ctx, data.Token, data.User); err != nil {
		log.Error("Error saving session", "errMsg", err.Error())
		return nil, err
	}
	log.Info("logged in")
	return data.User, nil
}

// Logout tells the backend and always clears the local session.
func (a *AuthService) Logout(ctx context.Context) error {
	const op = "auth.AuthService.Logout"
	log := a.log.With("op", op)
	if _, err := a.api.Logout(ctx); err != nil {
		log.Warn("Error calling Backend.Logout", "errMsg", err.Error())
	}
	if err := a.session.Clear(ctx); err != nil {
		log.Error("Error clearing session", "errMsg", err.Error())
		return err
	}
	return nil
}

func (a *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "auth.AuthService.ForgotPassword"
	log := a.log.With("op", op, "email", email)
	env, err := a.api.ForgotPassword(ctx, strings.TrimSpace(email))
	if err != nil {
		log.Error("Error calling Backend.ForgotPassword", "errMsg", err.Error())
		return "", err
	}
	if err := backend.Check(env); err != nil {
		return "", err
	}
	return messageOr(env, "Revisa tu correo para continuar"), nil
}

type ResetForm struct {
	Token        string
	Contrasena   string
	Confirmacion string
}

func (a *AuthService) ResetPassword(ctx context.Context, form ResetForm) (string, error) {
	const op = "auth.AuthService.ResetPassword"
	log := a.log.With("op", op)
	switch {
	case strings.TrimSpace(form.Token) == "":
		return "", ErrInvalidToken
	case form.Contrasena != form.Confirmacion:
		return "", ErrPasswordMismatch
	case !validator.CheckPassword(form.Contrasena).OK():
		return "", ErrWeakPassword
	}
	env, err := a.api.ResetPassword(ctx, form.Token, form.Contrasena)
	if err != nil {
		log.Error("Error calling Backend.ResetPassword", "errMsg", err.Error())
		return "", err
	}
	if err := backend.Check(env); err != nil {
		return "", err
	}
	return messageOr(env, "Contraseña restablecida"), nil
}

func messageOr(env *backend.Envelope, fallback string) string {
	if msg := env.Text(); msg != "" {
		return msg
	}
	return fallback
}
