package services

import (
	"errors"
	"log/slog"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/clients/trailers"
	"samfilms/client/internal/config"
	"samfilms/client/internal/services/auth"
	"samfilms/client/internal/services/catalog"
	"samfilms/client/internal/services/favorites"
	"samfilms/client/internal/services/guard"
	"samfilms/client/internal/services/profile"
	"samfilms/client/internal/services/watch"
	"samfilms/client/internal/session"
)

type Services struct {
	Auth      *auth.AuthService
	Guard     *guard.Guard
	Profile   *profile.ProfileService
	Catalog   *catalog.CatalogService
	Favorites *favorites.FavoritesService
	Watch     *watch.WatchService
}

func New(log *slog.Logger, cfg *config.Config, api *backend.Client, store *session.Store) *Services {
	finder := trailers.NewChain(log,
		trailers.NewBackend(log, api),
		trailers.NewTMDB(log, providerOptions(cfg.Providers.TMDB)),
		trailers.NewPexels(log, providerOptions(cfg.Providers.Pexels)),
	)
	return &Services{
		Auth:      auth.New(log, api, store),
		Guard:     guard.New(log, store),
		Profile:   profile.New(log, api, store),
		Catalog:   catalog.New(log, api, cfg.Catalog.Limit, cfg.Search.Debounce),
		Favorites: favorites.New(log, api),
		Watch:     watch.New(log, api, store, finder),
	}
}

func providerOptions(p config.Provider) trailers.Options {
	return trailers.Options{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Rps:     p.Rps,
		Burst:   p.Burst,
	}
}

func (s *Services) Close() {
	s.Catalog.Close()
}

// localErrors are rejected before or instead of a backend call; their text is
// already meant for the user.
var localErrors = []error{
	auth.ErrPasswordMismatch,
	auth.ErrWeakPassword,
	auth.ErrInvalidToken,
	auth.ErrInvalidAuthData,
	guard.ErrUnauthenticated,
	profile.ErrNoProfile,
	profile.ErrPasswordRequired,
	catalog.ErrLoadFailed,
	favorites.ErrNotInList,
	watch.ErrLoginRequired,
	watch.ErrNotOwner,
	watch.ErrEmptyComment,
	watch.ErrInvalidRating,
	watch.ErrInProgress,
	watch.ErrCommentNotFound,
	watch.ErrNotOpened,
	trailers.ErrUnavailable,
}

// UserMessage is the text to show for err from any service.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range localErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return backend.UserMessage(err)
}
