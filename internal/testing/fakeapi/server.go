// Package fakeapi is an in-process stand-in for the SamFilms REST backend used by
// tests. It answers with the same {success, message, data} envelope, issues JWTs on
// login and records every request it receives.
package fakeapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/lib/logger"
)

const (
	apiPrefix = "/api/v1"
	secret    = "fakeapi-secret"
)

// Request is what the server saw for one call.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization []string
	ContentType   string
	Body          string
}

type override struct {
	status      int
	contentType string
	body        string
}

type storedUser struct {
	user     models.User
	password string
}

type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	requests  []Request
	overrides map[string]override

	users     map[string]*storedUser // by user id
	movies    []models.Movie
	genres    map[string][]string // genre name -> movie ids
	trailers  map[string]string
	favorites map[string][]models.Favorite // by user id
	comments  []storedComment
	ratings   map[string]map[string]int // movie id -> user id -> value

	// EmbedMovies makes new favorites carry a movie snapshot.
	EmbedMovies bool
}

type storedComment struct {
	comment  models.Comment
	movieKey string
}

func New(t testing.TB) *Server {
	s := &Server{
		overrides: make(map[string]override),
		users:     make(map[string]*storedUser),
		genres:    make(map[string][]string),
		trailers:  make(map[string]string),
		favorites: make(map[string][]models.Favorite),
		ratings:   make(map[string]map[string]int),
	}
	s.srv = httptest.NewUnstartedServer(s.routes())
	s.srv.Config.ErrorLog = logger.LogAdapter(logger.Discard())
	s.srv.Start()
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, including the /api/v1 prefix.
func (s *Server) URL() string {
	return s.srv.URL + apiPrefix
}

// Close stops the server; later calls fail at the transport level.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(s.record)
	router.Use(s.applyOverrides)
	router.Use(s.authenticate)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Route(apiPrefix, s.apiRoutes)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusNotFound, nil, "Ruta no encontrada")
	})
	return router
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.EscapedPath(), apiPrefix),
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Values("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func overrideKey(method, path string) string {
	return method + " " + path
}

func (s *Server) applyOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		o, ok := s.overrides[overrideKey(r.Method, strings.TrimPrefix(r.URL.Path, apiPrefix))]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if o.contentType != "" {
			w.Header().Set("Content-Type", o.contentType)
		}
		w.WriteHeader(o.status)
		_, _ = io.WriteString(w, o.body)
	})
}

// Fail makes every call to method+path (relative to /api/v1) answer with status
// and a raw body of the given content type.
func (s *Server) Fail(method, path string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[overrideKey(method, path)] = override{status: status, contentType: contentType, body: body}
}

func (s *Server) Restore(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, overrideKey(method, path))
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and had a path with the prefix.
func (s *Server) Count(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) Last() Request {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return Request{}
	}
	return reqs[len(reqs)-1]
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AddUser registers a user that can log in with email and password.
func (s *Server) AddUser(user models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = newID()
	}
	s.users[user.ID.String()] = &storedUser{user: user, password: password}
	return user
}

func (s *Server) AddMovie(m models.Movie, genres ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = append(s.movies, m)
	for _, g := range genres {
		s.genres[g] = append(s.genres[g], m.ID.String())
	}
}

func (s *Server) SetTrailer(movieID, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailers[movieID] = url
}

func (s *Server) SetFavorites(userID string, favs []models.Favorite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[userID] = append([]models.Favorite(nil), favs...)
}

func (s *Server) Favorites(userID string) []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Favorite(nil), s.favorites[userID]...)
}

func (s *Server) SetRating(movieID, userID string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratings[movieID] == nil {
		s.ratings[movieID] = make(map[string]int)
	}
	s.ratings[movieID][userID] = value
}

func (s *Server) Rating(movieID, userID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ratings[movieID][userID]
	return v, ok
}

func (s *Server) AddComment(movieKey string, c models.Comment) models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = newID()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.comments = append(s.comments, storedComment{comment: c, movieKey: movieKey})
	return c
}

// Token issues a valid bearer token for userID.
func (s *Server) Token(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}
