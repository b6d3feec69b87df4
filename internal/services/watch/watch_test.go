package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/clients/trailers"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/domain/movieref"
	"samfilms/client/internal/lib/logger"
	"samfilms/client/internal/lib/tasks"
	"samfilms/client/internal/session"
	"samfilms/client/internal/storage/memory"
	"samfilms/client/internal/testing/fakeapi"
)

const internalID = "3f1c2b9a-8d4e-4f6a-9b7c-1a2b3c4d5e6f"

type fixture struct {
	svc   *WatchService
	api   *fakeapi.Server
	store *session.Store
	user  models.User
}

func setup(t *testing.T, loggedIn bool) fixture {
	t.Helper()
	ctx := context.Background()
	api := fakeapi.New(t)
	api.AddMovie(models.Movie{ID: "27205", Title: "Inception", PeliculaID: internalID})
	api.AddMovie(models.Movie{ID: "550", Title: "Fight Club"})
	api.SetTrailer("27205", "https://vimeo.test/27205")
	user := api.AddUser(models.User{Nombres: "Ana", Apellidos: "Pérez", Correo: "ana@mail.com"}, "x")

	store := session.New(logger.Discard(), memory.New(), tasks.Inline{})
	if loggedIn {
		require.NoError(t, store.Save(ctx, api.Token(user.ID.String()), &user))
	}
	client := backend.New(logger.Discard(), api.URL(), store, 0)
	finder := trailers.NewChain(logger.Discard(), trailers.NewBackend(logger.Discard(), client))
	return fixture{svc: New(logger.Discard(), client, store, finder), api: api, store: store, user: user}
}

func TestOpen(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	f.api.SetRating("27205", "someone-else", 2)
	f.api.AddComment(internalID, models.Comment{Content: "Gran película", UserID: "someone-else"})

	st, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)
	assert.Equal(t, "Inception", st.Movie.Title)
	assert.Equal(t, movieref.Internal(internalID), st.Ref)
	assert.Equal(t, "https://vimeo.test/27205", st.Trailer)
	assert.False(t, st.IsFavorite)
	require.Len(t, st.Comments, 1)
	assert.Equal(t, "Gran película", st.Comments[0].Content)
	assert.Equal(t, 1, st.Count)
	assert.InDelta(t, 2.0, st.Average, 0.001)
	assert.Zero(t, st.UserRating)
}

func TestOpenDegradesSecondaryLoads(t *testing.T) {
	f := setup(t, false)
	f.api.Fail(http.MethodGet, "/comments/movie/550", http.StatusInternalServerError, "", "")

	st, err := f.svc.Open(context.Background(), "550")
	require.NoError(t, err)
	assert.Equal(t, movieref.External(550), st.Ref)
	assert.Empty(t, st.Trailer)
	assert.Empty(t, st.Comments)
	assert.Zero(t, f.api.Count(http.MethodGet, "/favorites"))
	assert.Zero(t, f.api.Count(http.MethodGet, "/ratings/user"))
}

func TestOpenMissingMovie(t *testing.T) {
	f := setup(t, true)
	_, err := f.svc.Open(context.Background(), "404")
	var reqErr *backend.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
}

func TestToggleFavorite(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)

	on, err := f.svc.ToggleFavorite(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(f.api.Last().Body), &body))
	assert.Equal(t, internalID, body["movieId"])
	require.Len(t, f.api.Favorites(f.user.ID.String()), 1)

	st, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)
	assert.True(t, st.IsFavorite)

	on, err = f.svc.ToggleFavorite(ctx)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, f.api.Favorites(f.user.ID.String()))
}

// Offline toggle: the flag stays as it was and the error is the connectivity one.
func TestToggleFavoriteOffline(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)
	f.api.Close()

	on, err := f.svc.ToggleFavorite(ctx)
	assert.ErrorIs(t, err, backend.ErrConnection)
	assert.Equal(t, backend.MsgConnection, backend.UserMessage(err))
	assert.False(t, on)
	assert.False(t, f.svc.State().IsFavorite)
}

func TestRate(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)

	require.NoError(t, f.svc.Rate(ctx, 4))
	st := f.svc.State()
	assert.Equal(t, 4, st.UserRating)
	assert.Equal(t, 1, st.Count)
	assert.InDelta(t, 4.0, st.Average, 0.001)
	cached, ok := f.store.CachedRating(ctx, "27205")
	assert.True(t, ok)
	assert.Equal(t, 4, cached)

	v, ok := f.api.Rating("27205", f.user.ID.String())
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestRateRevertsOnRejection(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	f.api.SetRating("27205", f.user.ID.String(), 2)
	_, err := f.svc.Open(ctx, "27205")
	require.NoError(t, err)
	require.Equal(t, 2, f.svc.State().UserRating)

	f.api.Fail(http.MethodPost, "/ratings", http.StatusInternalServerError, "application/json", `{"success":false,"message":"No se pudo guardar"}`)
	err = f.svc.Rate(ctx, 4)
	assert.Equal(t, "No se pudo guardar", backend.UserMessage(err))
	assert.Equal(t, 2, f.svc.State().UserRating)
	cached, ok := f.store.CachedRating(ctx, "27205")
	assert.True(t, ok)
	assert.Equal(t, 2, cached)
}

func TestRateRevertsToNoRating(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "550")
	require.NoError(t, err)

	f.api.Fail(http.MethodPost, "/ratings", http.StatusUnauthorized, "application/json", `{"success":false,"message":"Token expirado"}`)
	err = f.svc.Rate(ctx, 5)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Zero(t, f.svc.State().UserRating)
	_, ok := f.store.CachedRating(ctx, "550")
	assert.False(t, ok)
}

func TestRateGuards(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Rate(ctx, 3), ErrNotOpened)
	_, err := f.svc.Open(ctx, "550")
	require.NoError(t, err)
	f.api.ResetRequests()

	assert.ErrorIs(t, f.svc.Rate(ctx, 0), ErrInvalidRating)
	assert.ErrorIs(t, f.svc.Rate(ctx, 6), ErrInvalidRating)
	assert.ErrorIs(t, f.svc.Rate(ctx, 3), ErrLoginRequired)
	assert.Empty(t, f.api.Requests())
}

func TestComments(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	other := f.api.AddComment("550", models.Comment{Content: "Ajeno", UserID: "someone-else"})
	_, err := f.svc.Open(ctx, "550")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Comment(ctx, "   "), ErrEmptyComment)
	require.NoError(t, f.svc.Comment(ctx, "Me encantó"))
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(lastPost(f.api).Body), &body))
	assert.Equal(t, float64(550), body["tmdb_id"])
	assert.Equal(t, f.user.ID.String(), body["usuario_id"])

	comments := f.svc.State().Comments
	require.Len(t, comments, 2)
	mine := comments[1]
	assert.Equal(t, "Me encantó", mine.Content)

	assert.ErrorIs(t, f.svc.EditComment(ctx, other.ID.String(), "x"), ErrNotOwner)
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, other.ID.String()), ErrNotOwner)
	assert.ErrorIs(t, f.svc.EditComment(ctx, "missing", "x"), ErrCommentNotFound)

	require.NoError(t, f.svc.EditComment(ctx, mine.ID.String(), "Me encantó, de verdad"))
	edited := f.svc.State().Comments[1]
	assert.Equal(t, "Me encantó, de verdad", edited.Content)
	assert.True(t, edited.Edited)

	require.NoError(t, f.svc.DeleteComment(ctx, mine.ID.String()))
	assert.Len(t, f.svc.State().Comments, 1)
}

func TestCommentRequiresUser(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "550")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Comment(ctx, "hola"), ErrLoginRequired)
}

func lastPost(api *fakeapi.Server) fakeapi.Request {
	reqs := api.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == http.MethodPost {
			return reqs[i]
		}
	}
	return fakeapi.Request{}
}
