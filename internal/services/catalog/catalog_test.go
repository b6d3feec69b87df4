package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/fields"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/logger"
	"samfilms/client/internal/testing/fakeapi"
)

const quiet = 40 * time.Millisecond

func setup(t *testing.T) (*CatalogService, *fakeapi.Server) {
	t.Helper()
	api := fakeapi.New(t)
	api.AddMovie(models.Movie{ID: "27205", Title: "Inception"}, "Acción", "Ciencia ficción")
	api.AddMovie(models.Movie{ID: "155", Title: "The Dark Knight"}, "Acción")
	api.AddMovie(models.Movie{ID: "13", Title: "Forrest Gump"}, "Drama")
	client := backend.New(logger.Discard(), api.URL(), nil, 0)
	svc := New(logger.Discard(), client, 50, quiet)
	t.Cleanup(svc.Close)
	return svc, api
}

func collect(svc *CatalogService) <-chan SearchResult {
	ch := make(chan SearchResult, 16)
	svc.OnResults(func(r SearchResult) { ch <- r })
	return ch
}

func TestLoad(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()

	all, err := svc.Load(ctx, AllGenres)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "/movies", api.Last().Path)
	assert.Equal(t, "limit=50", api.Last().RawQuery)

	action, err := svc.Load(ctx, "Acción")
	require.NoError(t, err)
	assert.Len(t, action, 2)
	assert.Equal(t, "Acción", svc.Genre())
	assert.Len(t, svc.Movies(), 2)

	sciFi, err := svc.Load(ctx, "Ciencia ficción")
	require.NoError(t, err)
	require.Len(t, sciFi, 1)
	assert.Equal(t, fields.FlexID("27205"), sciFi[0].ID)
}

func TestLoadFailureKeepsPreviousList(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()
	_, err := svc.Load(ctx, AllGenres)
	require.NoError(t, err)

	api.Fail(http.MethodGet, "/movies/genero/Drama", http.StatusInternalServerError, "text/plain", "oops")
	_, err = svc.Load(ctx, "Drama")
	assert.Equal(t, backend.MsgGeneric, backend.UserMessage(err))
	assert.Len(t, svc.Movies(), 3)
	assert.Equal(t, AllGenres, svc.Genre())
}

// Keystrokes closer together than the quiet period produce one request for the
// final value; a later burst produces one more.
func TestSearchDebounced(t *testing.T) {
	svc, api := setup(t)
	results := collect(svc)

	for _, term := range []string{"i", "in", "inc", "ince", "incep"} {
		svc.Search(term)
		time.Sleep(quiet / 8)
	}
	r := waitResult(t, results)
	assert.Equal(t, "incep", r.Term)
	require.Len(t, r.Movies, 1)
	assert.Equal(t, "Inception", r.Movies[0].Title)
	assert.Equal(t, 1, api.Count(http.MethodGet, "/movies/search"))
	assert.Equal(t, "/movies/search/incep", api.Last().Path)

	for _, term := range []string{"incept", "incepti", "inceptio", "inception"} {
		svc.Search(term)
		time.Sleep(quiet / 8)
	}
	r = waitResult(t, results)
	assert.Equal(t, "inception", r.Term)
	assert.Equal(t, 2, api.Count(http.MethodGet, "/movies/search"))
	assert.Equal(t, "/movies/search/inception", api.Last().Path)
	assert.Equal(t, r, svc.Results())
}

func TestSearchSpacedKeystrokes(t *testing.T) {
	svc, api := setup(t)
	results := collect(svc)

	for _, term := range []string{"dark", "gump"} {
		svc.Search(term)
		r := waitResult(t, results)
		assert.Equal(t, term, r.Term)
	}
	assert.Equal(t, 2, api.Count(http.MethodGet, "/movies/search"))
}

func TestBlankSearchClearsWithoutRequest(t *testing.T) {
	svc, api := setup(t)
	results := collect(svc)

	svc.Search("dark")
	time.Sleep(quiet / 4)
	svc.Search("   ")
	r := waitResult(t, results)
	assert.Empty(t, r.Term)
	assert.Empty(t, r.Movies)

	time.Sleep(2 * quiet)
	assert.Zero(t, api.Count(http.MethodGet, "/movies/search"))
}

func TestFlushSearch(t *testing.T) {
	svc, api := setup(t)
	results := collect(svc)

	svc.Search("gump")
	assert.True(t, svc.FlushSearch())
	r := waitResult(t, results)
	assert.Equal(t, "gump", r.Term)
	assert.Equal(t, 1, api.Count(http.MethodGet, "/movies/search"))
}

func waitResult(t *testing.T, ch <-chan SearchResult) SearchResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no search result delivered")
		return SearchResult{}
	}
}
