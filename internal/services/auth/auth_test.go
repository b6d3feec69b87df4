package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/logger"
	"samfilms/client/internal/lib/tasks"
	"samfilms/client/internal/session"
	"samfilms/client/internal/storage/memory"
	"samfilms/client/internal/testing/fakeapi"
)

func setup(t *testing.T) (*AuthService, *session.Store, *fakeapi.Server, *backend.Client) {
	t.Helper()
	api := fakeapi.New(t)
	store := session.New(logger.Discard(), memory.New(), tasks.Inline{})
	client := backend.New(logger.Discard(), api.URL(), store, 0)
	return New(logger.Discard(), client, store), store, api, client
}

func TestRegisterMismatchSendsNothing(t *testing.T) {
	svc, _, api, _ := setup(t)

	_, err := svc.Register(context.Background(), RegisterForm{
		Nombres: "Ana", Apellidos: "Pérez", Edad: 30, Correo: "ana@mail.com",
		Contrasena: "abc", Confirmacion: "xyz",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, api.Requests())
}

func TestRegister(t *testing.T) {
	svc, _, api, _ := setup(t)
	form := RegisterForm{
		Nombres: "Ana", Apellidos: "Pérez", Edad: 30, Correo: "ana@mail.com",
		Contrasena: "secreta123", Confirmacion: "secreta123",
	}

	msg, err := svc.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Usuario registrado", msg)
	assert.Equal(t, 1, api.Count(http.MethodPost, "/users/register"))

	_, err = svc.Register(context.Background(), form)
	assert.Equal(t, "El correo ya está registrado", backend.UserMessage(err))
}

// Login, then an authenticated profile fetch carrying the stored token.
func TestLoginThenProfile(t *testing.T) {
	svc, store, api, client := setup(t)
	ctx := context.Background()
	api.AddUser(models.User{Nombres: "Ana", Apellidos: "Pérez", Correo: "ana@mail.com"}, "secreta123")

	user, err := svc.Login(ctx, "ana@mail.com", "secreta123")
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", user.DisplayName())

	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Empty(t, api.Last().Authorization)

	env, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer " + token}, api.Last().Authorization)
	me, err := backend.Decode[models.User](env)
	require.NoError(t, err)
	assert.Equal(t, user.DisplayName(), me.DisplayName())
}

func TestLoginFailureKeepsSessionEmpty(t *testing.T) {
	svc, store, api, _ := setup(t)
	ctx := context.Background()
	api.AddUser(models.User{Correo: "ana@mail.com"}, "secreta123")

	_, err := svc.Login(ctx, "ana@mail.com", "otra")
	var reqErr *backend.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)

	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLogoutClearsEvenWhenOffline(t *testing.T) {
	svc, store, api, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "tok", &models.User{ID: "u1"}))
	api.Close()

	require.NoError(t, svc.Logout(ctx))
	token, _ := store.LoadToken(ctx)
	user, _ := store.LoadUser(ctx)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestResetPasswordRules(t *testing.T) {
	svc, _, api, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		form ResetForm
		want error
	}{
		{"no token", ResetForm{Contrasena: "Secreta#1", Confirmacion: "Secreta#1"}, ErrInvalidToken},
		{"mismatch", ResetForm{Token: "t", Contrasena: "Secreta#1", Confirmacion: "Secreta#2"}, ErrPasswordMismatch},
		{"weak", ResetForm{Token: "t", Contrasena: "secreta12", Confirmacion: "secreta12"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ResetPassword(ctx, tt.form)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
	assert.Empty(t, api.Requests())

	msg, err := svc.ResetPassword(ctx, ResetForm{Token: "t", Contrasena: "Secreta#1", Confirmacion: "Secreta#1"})
	require.NoError(t, err)
	assert.Equal(t, "Contraseña restablecida", msg)
}

func TestForgotPassword(t *testing.T) {
	svc, _, api, _ := setup(t)

	_, err := svc.ForgotPassword(context.Background(), "no-es-correo")
	assert.ErrorIs(t, err, backend.ErrValidation)
	assert.Empty(t, api.Requests())

	msg, err := svc.ForgotPassword(context.Background(), "ana@mail.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}
