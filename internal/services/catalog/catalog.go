package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/debounce"
)

const AllGenres = "all"

type Genre struct {
	ID   string
	Name string
}

var Genres = []Genre{
	{ID: AllGenres, Name: "Todas"},
	{ID: "Acción", Name: "Acción"},
	{ID: "Aventura", Name: "Aventura"},
	{ID: "Animación", Name: "Animación"},
	{ID: "Comedia", Name: "Comedia"},
	{ID: "Crimen", Name: "Crimen"},
	{ID: "Documental", Name: "Documental"},
	{ID: "Drama", Name: "Drama"},
	{ID: "Familia", Name: "Familia"},
	{ID: "Fantasía", Name: "Fantasía"},
	{ID: "Historia", Name: "Historia"},
	{ID: "Terror", Name: "Terror"},
	{ID: "Música", Name: "Música"},
	{ID: "Misterio", Name: "Misterio"},
	{ID: "Romance", Name: "Romance"},
	{ID: "Ciencia ficción", Name: "Ciencia Ficción"},
	{ID: "Suspense", Name: "Suspense"},
	{ID: "Bélica", Name: "Bélica"},
	{ID: "Western", Name: "Western"},
}

var ErrLoadFailed = errors.New("No se pudieron cargar las películas")

type Backend interface {
	ListMovies(ctx context.Context, limit int) (*backend.Envelope, error)
	MoviesByGenre(ctx context.Context, genre string, limit int) (*backend.Envelope, error)
	SearchMovies(ctx context.Context, term string) (*backend.Envelope, error)
}

// SearchResult is delivered once per search request that was not superseded.
type SearchResult struct {
	Term   string
	Movies []models.Movie
	Err    error
}

type CatalogService struct {
	log   *slog.Logger
	api   Backend
	limit int

	mu     sync.Mutex
	genre  string
	movies []models.Movie

	search    *debounce.Debouncer[string]
	root      context.Context
	stop      context.CancelFunc
	gen       uint64
	cancel    context.CancelFunc
	results   SearchResult
	listeners []func(SearchResult)
}

func New(log *slog.Logger, api Backend, limit int, delay time.Duration) *CatalogService {
	root, stop := context.WithCancel(context.Background())
	s := &CatalogService{
		log:   log,
		api:   api,
		limit: limit,
		genre: AllGenres,
		root:  root,
		stop:  stop,
	}
	s.search = debounce.New(delay, s.runSearch)
	return s
}

// Load lists the catalog for genre; "" and "all" mean no filter.
func (s *CatalogService) Load(ctx context.Context, genre string) ([]models.Movie, error) {
	const op = "catalog.CatalogService.Load"
	if genre == "" {
		genre = AllGenres
	}
	log := s.log.With("op", op, "genre", genre)

	var (
		env *backend.Envelope
		err error
	)
	if genre == AllGenres {
		env, err = s.api.ListMovies(ctx, s.limit)
	} else {
		env, err = s.api.MoviesByGenre(ctx, genre, s.limit)
	}
	if err != nil {
		log.Error("Error loading movies", "errMsg", err.Error())
		return nil, err
	}
	movies, err := backend.Decode[[]models.Movie](env)
	if err != nil {
		log.Error("Error decoding movies", "errMsg", err.Error())
		if errors.Is(err, backend.ErrNoData) {
			return nil, ErrLoadFailed
		}
		return nil, err
	}

	s.mu.Lock()
	s.genre = genre
	s.movies = movies
	s.mu.Unlock()
	return movies, nil
}

func (s *CatalogService) Genre() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genre
}

func (s *CatalogService) Movies() []models.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Movie(nil), s.movies...)
}

// OnResults registers fn for every delivered search result.
func (s *CatalogService) OnResults(fn func(SearchResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Search schedules a search for term once typing has been quiet for the debounce
// delay. A blank term clears the results at once, without a request.
func (s *CatalogService) Search(term string) {
	if strings.TrimSpace(term) == "" {
		s.search.Cancel()
		s.mu.Lock()
		s.gen++
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.results = SearchResult{}
		s.mu.Unlock()
		s.deliver(SearchResult{})
		return
	}
	s.search.Trigger(term)
}

// FlushSearch runs a pending search immediately, as when the user presses enter.
func (s *CatalogService) FlushSearch() bool {
	return s.search.Flush()
}

func (s *CatalogService) Results() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results
	r.Movies = append([]models.Movie(nil), r.Movies...)
	return r
}

func (s *CatalogService) runSearch(term string) {
	const op = "catalog.CatalogService.runSearch"
	term = strings.TrimSpace(term)
	log := s.log.With("op", op, "term", term)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.root)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	result := SearchResult{Term: term}
	env, err := s.api.SearchMovies(ctx, term)
	if err == nil {
		result.Movies, err = backend.Decode[[]models.Movie](env)
		if errors.Is(err, backend.ErrNoData) {
			err = nil
		}
	}
	result.Err = err

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		log.Debug("search superseded")
		return
	}
	s.cancel = nil
	s.results = result
	s.mu.Unlock()

	if err != nil {
		log.Error("Error searching movies", "errMsg", err.Error())
	}
	s.deliver(result)
}

func (s *CatalogService) deliver(r SearchResult) {
	s.mu.Lock()
	listeners := make([]func(SearchResult), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
}

// Close drops any pending search and cancels one in flight.
func (s *CatalogService) Close() {
	s.search.Stop()
	s.stop()
}
