package favorites

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
)

// maxLookups bounds concurrent movie fetches while resolving a favorites list.
const maxLookups = 4

var ErrNotInList = errors.New("La película no está en tus favoritos")

type Backend interface {
	ListFavorites(ctx context.Context) (*backend.Envelope, error)
	RemoveFavorite(ctx context.Context, movieID string) (*backend.Envelope, error)
	ClearFavorites(ctx context.Context) (*backend.Envelope, error)
	FavoritesStats(ctx context.Context) (*backend.Envelope, error)
	GetMovie(ctx context.Context, id string) (*backend.Envelope, error)
}

// Entry is a favorite together with the movie it points at. Ref is the canonical
// reference used for removal.
type Entry struct {
	Ref      string
	Favorite models.Favorite
	Movie    models.Movie
}

type FavoritesService struct {
	log *slog.Logger
	api Backend

	mu      sync.Mutex
	entries []Entry
}

func New(log *slog.Logger, api Backend) *FavoritesService {
	return &FavoritesService{log: log, api: api}
}

// Load fetches the list and resolves each favorite to a movie. Favorites whose
// movie cannot be resolved are left out.
func (s *FavoritesService) Load(ctx context.Context) ([]Entry, error) {
	const op = "favorites.FavoritesService.Load"
	log := s.log.With("op", op)
	env, err := s.api.ListFavorites(ctx)
	if err != nil {
		log.Error("Error calling Backend.ListFavorites", "errMsg", err.Error())
		return nil, err
	}
	favs, err := backend.Decode[[]models.Favorite](env)
	if err != nil && !errors.Is(err, backend.ErrNoData) {
		log.Error("Error decoding favorites", "errMsg", err.Error())
		return nil, err
	}

	resolved := make([]*Entry, len(favs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)
	for i, fav := range favs {
		ref := fav.MovieReference()
		if ref == "" {
			log.Warn("favorite without movie reference", "favorite", fav.ID.String())
			continue
		}
		if fav.Movie != nil && fav.Movie.Title != "" {
			resolved[i] = &Entry{Ref: ref, Favorite: fav, Movie: *fav.Movie}
			continue
		}
		g.Go(func() error {
			movie, err := s.movie(gctx, ref)
			if err != nil {
				log.Warn("skipping favorite", "favorite", fav.ID.String(), "ref", ref, "errMsg", err.Error())
				return nil
			}
			resolved[i] = &Entry{Ref: ref, Favorite: fav, Movie: *movie}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(resolved))
	for _, e := range resolved {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return s.Entries(), nil
}

func (s *FavoritesService) movie(ctx context.Context, ref string) (*models.Movie, error) {
	env, err := s.api.GetMovie(ctx, ref)
	if err != nil {
		return nil, err
	}
	movie, err := backend.Decode[models.Movie](env)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (s *FavoritesService) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Remove deletes the favorite and drops it from the list only once the backend
// has confirmed.
func (s *FavoritesService) Remove(ctx context.Context, ref string) error {
	const op = "favorites.FavoritesService.Remove"
	log := s.log.With("op", op, "ref", ref)
	if !s.has(ref) {
		return ErrNotInList
	}
	env, err := s.api.RemoveFavorite(ctx, ref)
	if err != nil {
		log.Error("Error calling Backend.RemoveFavorite", "errMsg", err.Error())
		return err
	}
	if err := backend.Check(env); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Ref != ref {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()
	return nil
}

func (s *FavoritesService) has(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Ref == ref {
			return true
		}
	}
	return false
}

func (s *FavoritesService) Clear(ctx context.Context) error {
	const op = "favorites.FavoritesService.Clear"
	env, err := s.api.ClearFavorites(ctx)
	if err != nil {
		s.log.Error("Error calling Backend.ClearFavorites", "op", op, "errMsg", err.Error())
		return err
	}
	if err := backend.Check(env); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return nil
}

func (s *FavoritesService) Stats(ctx context.Context) (*models.FavoriteStats, error) {
	env, err := s.api.FavoritesStats(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := backend.Decode[models.FavoriteStats](env)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
