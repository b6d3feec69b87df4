// Package session persists the auth token, a snapshot of the current user and the
// user's last rating per movie. Every read goes to storage: nothing is cached in
// memory, so values written by another process are always seen.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/storage"
)

const (
	keyToken        = "token"
	keyUser         = "user"
	keyRatingPrefix = "rating:"
)

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
}

type TaskExecutor interface {
	Add(task func())
}

type EventKind int

const (
	EventSaved EventKind = iota + 1
	EventUserUpdated
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "saved"
	case EventUserUpdated:
		return "user_updated"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	User *models.User
}

type Listener func(Event)

type Store struct {
	log      *slog.Logger
	storage  Storage
	executor TaskExecutor

	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

func New(log *slog.Logger, storage Storage, executor TaskExecutor) *Store {
	return &Store{
		log:       log,
		storage:   storage,
		executor:  executor,
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Save(ctx context.Context, token string, user *models.User) error {
	const op = "session.Store.Save"
	if err := s.setJSON(ctx, keyToken, token); err != nil {
		s.log.Error("Error saving token", "op", op, "errMsg", err.Error())
		return err
	}
	if err := s.setJSON(ctx, keyUser, user); err != nil {
		s.log.Error("Error saving user", "op", op, "errMsg", err.Error())
		if rmErr := s.storage.Remove(ctx, keyToken); rmErr != nil {
			s.log.Error("Error removing token", "op", op, "errMsg", rmErr.Error())
		}
		return err
	}
	s.notify(Event{Kind: EventSaved, User: user})
	return nil
}

// SaveUser replaces the cached user and keeps the token.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	if err := s.setJSON(ctx, keyUser, user); err != nil {
		s.log.Error("Error saving user", "op", "session.Store.SaveUser", "errMsg", err.Error())
		return err
	}
	s.notify(Event{Kind: EventUserUpdated, User: user})
	return nil
}

// LoadToken returns "" when no token is stored.
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	var token string
	found, err := s.getJSON(ctx, keyToken, &token)
	if err != nil || !found {
		return "", err
	}
	return token, nil
}

// Token is the token source used by the request executor; storage failures read as
// "no token".
func (s *Store) Token(ctx context.Context) string {
	token, err := s.LoadToken(ctx)
	if err != nil {
		s.log.Warn("Error reading token", "op", "session.Store.Token", "errMsg", err.Error())
		return ""
	}
	return token
}

// LoadUser returns nil when no user is stored or the stored blob is unreadable.
func (s *Store) LoadUser(ctx context.Context) (*models.User, error) {
	var user models.User
	found, err := s.getJSON(ctx, keyUser, &user)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			s.log.Warn("Discarding unreadable cached user", "op", "session.Store.LoadUser", "errMsg", err.Error())
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Remove(ctx, keyToken, keyUser); err != nil {
		s.log.Error("Error clearing session", "op", "session.Store.Clear", "errMsg", err.Error())
		return err
	}
	s.notify(Event{Kind: EventCleared})
	return nil
}

func (s *Store) CachedRating(ctx context.Context, movieID string) (int, bool) {
	var rating int
	found, err := s.getJSON(ctx, keyRatingPrefix+movieID, &rating)
	if err != nil || !found {
		return 0, false
	}
	return rating, true
}

func (s *Store) CacheRating(ctx context.Context, movieID string, rating int) error {
	return s.setJSON(ctx, keyRatingPrefix+movieID, rating)
}

func (s *Store) ForgetRating(ctx context.Context, movieID string) error {
	return s.storage.Remove(ctx, keyRatingPrefix+movieID)
}

// Subscribe registers fn for session changes and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(ev Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		s.executor.Add(func() { l(ev) })
	}
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, key, b)
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	b, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(b) == 0 || string(b) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}
