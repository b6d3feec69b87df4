package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/optimistic"
)

var (
	ErrNoProfile        = errors.New("No hay un perfil cargado")
	ErrPasswordRequired = errors.New("Debes ingresar tu contraseña")
)

type Backend interface {
	GetProfile(ctx context.Context) (*backend.Envelope, error)
	UpdateProfile(ctx context.Context, in backend.UpdateProfileInput) (*backend.Envelope, error)
	DeleteAccount(ctx context.Context, password string) (*backend.Envelope, error)
}

type SessionStore interface {
	LoadUser(ctx context.Context) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	Clear(ctx context.Context) error
}

type ProfileService struct {
	log     *slog.Logger
	api     Backend
	session SessionStore

	mu   sync.Mutex
	user *models.User
}

func New(log *slog.Logger, api Backend, session SessionStore) *ProfileService {
	return &ProfileService{
		log:     log,
		api:     api,
		session: session,
	}
}

// Load shows the cached user first, then replaces it with the server copy. When the
// fetch fails the cached user, if any, stays in place and the error is returned.
func (s *ProfileService) Load(ctx context.Context) (*models.User, error) {
	const op = "profile.ProfileService.Load"
	log := s.log.With("op", op)
	cached, err := s.session.LoadUser(ctx)
	if err != nil {
		log.Warn("Error reading cached user", "errMsg", err.Error())
	}
	s.setState(cached)

	env, err := s.api.GetProfile(ctx)
	if err != nil {
		log.Error("Error calling Backend.GetProfile", "errMsg", err.Error())
		return nil, err
	}
	user, err := backend.Decode[models.User](env)
	if err != nil {
		log.Error("Error decoding profile", "errMsg", err.Error())
		return nil, err
	}
	s.setState(&user)
	if err := s.session.SaveUser(ctx, &user); err != nil {
		log.Warn("Error caching user", "errMsg", err.Error())
	}
	return clone(&user), nil
}

// Current never returns a partially loaded value; nil means nothing is loaded yet.
func (s *ProfileService) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.user)
}

func (s *ProfileService) DisplayName() string {
	return s.Current().DisplayName()
}

// Update applies in to the profile and the cached user before the call resolves and
// restores both verbatim if the backend rejects it.
func (s *ProfileService) Update(ctx context.Context, in backend.UpdateProfileInput) (*models.User, error) {
	const op = "profile.ProfileService.Update"
	log := s.log.With("op", op)
	prior := s.Current()
	if prior == nil {
		return nil, ErrNoProfile
	}
	candidate := clone(prior)
	if in.Nombres != nil {
		candidate.Nombres = strings.TrimSpace(*in.Nombres)
	}
	if in.Apellidos != nil {
		candidate.Apellidos = strings.TrimSpace(*in.Apellidos)
	}
	if in.Edad != nil {
		candidate.Edad = *in.Edad
	}

	var confirmed *models.User
	err := optimistic.Apply(ctx, optimistic.Update[*models.User]{
		Prior:     prior,
		Candidate: candidate,
		Set:       func(u *models.User) { s.set(ctx, u) },
		Commit: func(ctx context.Context) error {
			env, err := s.api.UpdateProfile(ctx, in)
			if err != nil {
				return err
			}
			user, err := backend.Decode[models.User](env)
			switch {
			case err == nil:
				confirmed = &user
			case !errors.Is(err, backend.ErrNoData):
				return err
			}
			return nil
		},
	})
	if err != nil {
		log.Error("profile update reverted", "errMsg", err.Error())
		return nil, err
	}
	if confirmed != nil {
		s.set(ctx, confirmed)
	}
	return s.Current(), nil
}

func (s *ProfileService) DeleteAccount(ctx context.Context, password string) error {
	const op = "profile.ProfileService.DeleteAccount"
	log := s.log.With("op", op)
	if password == "" {
		return ErrPasswordRequired
	}
	env, err := s.api.DeleteAccount(ctx, password)
	if err != nil {
		log.Error("Error calling Backend.DeleteAccount", "errMsg", err.Error())
		return err
	}
	if err := backend.Check(env); err != nil {
		return err
	}
	s.setState(nil)
	if err := s.session.Clear(ctx); err != nil {
		log.Error("Error clearing session", "errMsg", err.Error())
		return err
	}
	return nil
}

func (s *ProfileService) set(ctx context.Context, u *models.User) {
	s.setState(u)
	if err := s.session.SaveUser(ctx, u); err != nil {
		s.log.Warn("Error caching user", "op", "profile.ProfileService.set", "errMsg", err.Error())
	}
}

func (s *ProfileService) setState(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = clone(u)
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
