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

const pexelsURL = "https://api.pexels.com"

// Pexels searches stock videos by movie title. The best (widest) mp4 file of the
// first hit is used.
type Pexels struct {
	base
}

func NewPexels(log *slog.Logger, opts Options) *Pexels {
	return &Pexels{base: newBase(log, opts, pexelsURL)}
}

func (p *Pexels) Name() string { return "pexels" }

type pexelsSearch struct {
	Videos []struct {
		ID    int64  `json:"id"`
		URL   string `json:"url"`
		Files []struct {
			Link     string `json:"link"`
			FileType string `json:"file_type"`
			Width    int    `json:"width"`
		} `json:"video_files"`
	} `json:"videos"`
}

func (p *Pexels) Trailer(ctx context.Context, movie *models.Movie) (string, error) {
	if !p.enabled() {
		return "", ErrDisabled
	}
	title := strings.TrimSpace(movie.Title)
	if title == "" {
		return "", ErrUnavailable
	}
	q := url.Values{}
	q.Set("query", title+" trailer")
	q.Set("per_page", "1")
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(p.opts.BaseURL, "/")+"/videos/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", p.opts.APIKey)

	resp, err := p.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body pexelsSearch
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Videos) == 0 {
		return "", ErrUnavailable
	}
	video := body.Videos[0]
	best, width := "", -1
	for _, f := range video.Files {
		if f.FileType == "video/mp4" && f.Width > width {
			best, width = f.Link, f.Width
		}
	}
	if best == "" {
		best = video.URL
	}
	if best == "" {
		return "", ErrUnavailable
	}
	return best, nil
}
