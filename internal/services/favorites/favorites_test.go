package favorites

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/logger"
	"samfilms/client/internal/testing/fakeapi"
)

func setup(t *testing.T) (*FavoritesService, *fakeapi.Server, string) {
	t.Helper()
	api := fakeapi.New(t)
	user := api.AddUser(models.User{Correo: "ana@mail.com"}, "x")
	token := api.Token(user.ID.String())
	client := backend.New(logger.Discard(), api.URL(), backend.TokenFunc(func(context.Context) string { return token }), 0)
	return New(logger.Discard(), client), api, user.ID.String()
}

func TestLoadResolvesAndSkips(t *testing.T) {
	svc, api, uid := setup(t)
	api.AddMovie(models.Movie{ID: "27205", Title: "Inception"})
	api.AddMovie(models.Movie{ID: "13", Title: "Forrest Gump"})
	api.SetFavorites(uid, []models.Favorite{
		{ID: "f1", TmdbID: "27205"},
		{ID: "f2", TmdbID: "999999"},
		{ID: "f3", PeliculaID: "13", TmdbID: "27205"},
		{ID: "f4", Movie: &models.Movie{ID: "550", Title: "Fight Club"}},
		{ID: "f5"},
	})

	entries, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "f1", entries[0].Favorite.ID.String())
	assert.Equal(t, "Inception", entries[0].Movie.Title)
	assert.Equal(t, "13", entries[1].Ref)
	assert.Equal(t, "Forrest Gump", entries[1].Movie.Title)
	assert.Equal(t, "Fight Club", entries[2].Movie.Title)

	// f4 carried a snapshot and f5 had no reference: neither needed a lookup.
	assert.Equal(t, 3, api.Count(http.MethodGet, "/movies/"))
}

func TestLoadEmpty(t *testing.T) {
	svc, _, _ := setup(t)
	entries, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadFailure(t *testing.T) {
	svc, api, _ := setup(t)
	api.Fail(http.MethodGet, "/favorites", http.StatusInternalServerError, "application/json", `{"success":false,"message":"Error al cargar favoritos"}`)
	_, err := svc.Load(context.Background())
	assert.Equal(t, "Error al cargar favoritos", backend.UserMessage(err))
}

func TestRemove(t *testing.T) {
	svc, api, uid := setup(t)
	ctx := context.Background()
	api.AddMovie(models.Movie{ID: "27205", Title: "Inception"})
	api.AddMovie(models.Movie{ID: "13", Title: "Forrest Gump"})
	api.SetFavorites(uid, []models.Favorite{{ID: "f1", TmdbID: "27205"}, {ID: "f2", TmdbID: "13"}})
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, "550"), ErrNotInList)

	api.Fail(http.MethodDelete, "/favorites/27205", http.StatusInternalServerError, "", "")
	require.Error(t, svc.Remove(ctx, "27205"))
	assert.Len(t, svc.Entries(), 2)

	api.Restore(http.MethodDelete, "/favorites/27205")
	require.NoError(t, svc.Remove(ctx, "27205"))
	entries := svc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "13", entries[0].Ref)
	assert.Len(t, api.Favorites(uid), 1)
}

func TestClearAndStats(t *testing.T) {
	svc, api, uid := setup(t)
	ctx := context.Background()
	api.SetFavorites(uid, []models.Favorite{{ID: "f1", TmdbID: "1"}, {ID: "f2", TmdbID: "2"}})

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)

	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, svc.Entries())
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
