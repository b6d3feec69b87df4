package trailers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/logger"
	"samfilms/client/internal/testing/fakeapi"
)

type stubProvider struct {
	name  string
	url   string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Trailer(ctx context.Context, movie *models.Movie) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestChainFallsThrough(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("boom")}
	disabled := &stubProvider{name: "disabled", err: ErrDisabled}
	last := &stubProvider{name: "last", url: "https://videos.test/1.mp4"}
	chain := NewChain(logger.Discard(), first, disabled, last)

	url, err := chain.Trailer(context.Background(), &models.Movie{ID: "550"})
	require.NoError(t, err)
	assert.Equal(t, "https://videos.test/1.mp4", url)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, last.calls)
}

func TestChainUnavailable(t *testing.T) {
	chain := NewChain(logger.Discard(),
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b"},
	)
	_, err := chain.Trailer(context.Background(), &models.Movie{ID: "550"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewChain(logger.Discard()).Trailer(context.Background(), &models.Movie{ID: "550"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPexels(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "/videos/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videos": [{"id": 1, "url": "https://pexels.test/v/1", "video_files": [
			{"link": "https://pexels.test/sd.mp4", "file_type": "video/mp4", "width": 640},
			{"link": "https://pexels.test/hd.mp4", "file_type": "video/mp4", "width": 1920},
			{"link": "https://pexels.test/x.webm", "file_type": "video/webm", "width": 3840}
		]}]}`))
	}))
	defer srv.Close()

	p := NewPexels(logger.Discard(), Options{APIKey: "key", BaseURL: srv.URL, Rps: 100, Burst: 10})
	url, err := p.Trailer(context.Background(), &models.Movie{ID: "550", Title: "Fight Club"})
	require.NoError(t, err)
	assert.Equal(t, "https://pexels.test/hd.mp4", url)
	assert.Equal(t, "key", gotAuth)
	assert.Equal(t, "Fight Club trailer", gotQuery)
}

func TestPexelsDisabledAndEmpty(t *testing.T) {
	_, err := NewPexels(logger.Discard(), Options{}).Trailer(context.Background(), &models.Movie{Title: "x"})
	assert.ErrorIs(t, err, ErrDisabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"videos": []}`))
	}))
	defer srv.Close()
	p := NewPexels(logger.Discard(), Options{APIKey: "key", BaseURL: srv.URL})
	_, err = p.Trailer(context.Background(), &models.Movie{Title: "Nada"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTMDB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550/videos", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"results": [
			{"key": "teaser", "site": "YouTube", "type": "Teaser"},
			{"key": "fan", "site": "YouTube", "type": "Trailer", "official": false},
			{"key": "official", "site": "YouTube", "type": "Trailer", "official": true}
		]}`))
	}))
	defer srv.Close()

	p := NewTMDB(logger.Discard(), Options{APIKey: "key", BaseURL: srv.URL})
	url, err := p.Trailer(context.Background(), &models.Movie{ID: "550"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=official", url)

	_, err = p.Trailer(context.Background(), &models.Movie{ID: "3f1c2b9a-8d4e-4f6a-9b7c-1a2b3c4d5e6f"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTMDBServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewTMDB(logger.Discard(), Options{APIKey: "bad", BaseURL: srv.URL})
	_, err := p.Trailer(context.Background(), &models.Movie{ID: "550"})
	require.Error(t, err)

	url, err := NewChain(logger.Discard(), p).Trailer(context.Background(), &models.Movie{ID: "550"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, url)
}

func TestBackendProvider(t *testing.T) {
	api := fakeapi.New(t)
	api.SetTrailer("550", "https://vimeo.test/550")
	client := backend.New(logger.Discard(), api.URL(), nil, 0)
	p := NewBackend(logger.Discard(), client)

	url, err := p.Trailer(context.Background(), &models.Movie{ID: "550"})
	require.NoError(t, err)
	assert.Equal(t, "https://vimeo.test/550", url)

	_, err = p.Trailer(context.Background(), &models.Movie{ID: "551"})
	require.Error(t, err)
}
