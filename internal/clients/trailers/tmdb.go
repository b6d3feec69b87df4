package trailers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"samfilms/client/internal/domain/models"
)

const (
	tmdbURL         = "https://api.themoviedb.org/3"
	youtubeWatchURL = "https://www.youtube.com/watch?v="
)

// TMDB reads the videos attached to a movie's external catalog id and picks a
// YouTube trailer, preferring official ones.
type TMDB struct {
	base
}

func NewTMDB(log *slog.Logger, opts Options) *TMDB {
	return &TMDB{base: newBase(log, opts, tmdbURL)}
}

func (p *TMDB) Name() string { return "tmdb" }

type tmdbVideos struct {
	Results []struct {
		Key      string `json:"key"`
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
	} `json:"results"`
}

func (p *TMDB) Trailer(ctx context.Context, movie *models.Movie) (string, error) {
	if !p.enabled() {
		return "", ErrDisabled
	}
	if _, ok := movie.ID.Int64(); !ok {
		return "", ErrUnavailable
	}
	q := url.Values{}
	q.Set("api_key", p.opts.APIKey)
	q.Set("language", "es-ES")
	endpoint := strings.TrimRight(p.opts.BaseURL, "/") + "/movie/" + url.PathEscape(movie.ID.String()) + "/videos?" + q.Encode()
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body tmdbVideos
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	key := ""
	for _, v := range body.Results {
		if v.Site != "YouTube" || v.Type != "Trailer" || v.Key == "" {
			continue
		}
		if v.Official {
			key = v.Key
			break
		}
		if key == "" {
			key = v.Key
		}
	}
	if key == "" {
		return "", ErrUnavailable
	}
	return youtubeWatchURL + key, nil
}
