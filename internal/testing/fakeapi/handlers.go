package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"samfilms/client/internal/domain/fields"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/domain/movieref"
)

type ctxKey string

const ctxKeyUserID ctxKey = "uid"

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any, msg string) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	render.Status(r, status)
	render.JSON(w, r, Response{Success: status >= 200 && status < 400, Message: msg, Data: data})
}

func newID() fields.FlexID {
	return fields.FlexID(uuid.NewString())
}

func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond(w, r, http.StatusBadRequest, nil, "Invalid Authorization header, should be 'Bearer <token>'")
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			respond(w, r, http.StatusUnauthorized, nil, "Token inválido o expirado")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respond(w, r, http.StatusUnauthorized, nil, "Token inválido o expirado")
			return
		}
		uid, _ := claims["uid"].(string)
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, uid))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := r.Context().Value(ctxKeyUserID).(string)
		s.mu.Lock()
		_, ok := s.users[uid]
		s.mu.Unlock()
		if uid == "" || !ok {
			respond(w, r, http.StatusUnauthorized, nil, "No autorizado")
			return
		}
		next(w, r)
	}
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(ctxKeyUserID).(string)
	return uid
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/logout", s.requireUser(s.logout))
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/reset-password", s.resetPassword)
		r.Get("/me", s.requireUser(s.getMe))
		r.Put("/me", s.requireUser(s.updateMe))
		r.Delete("/me", s.requireUser(s.deleteMe))
		r.Get("/", s.listUsers)
	})
	r.Route("/movies", func(r chi.Router) {
		r.Get("/", s.listMovies)
		r.Get("/search/{term}", s.searchMovies)
		r.Get("/genero/{genre}", s.moviesByGenre)
		r.Get("/{id}", s.getMovie)
		r.Get("/{id}/trailer", s.getTrailer)
	})
	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", s.requireUser(s.listFavorites))
		r.Post("/", s.requireUser(s.addFavorite))
		r.Delete("/", s.requireUser(s.clearFavorites))
		r.Get("/stats", s.requireUser(s.favoritesStats))
		r.Get("/check/{id}", s.requireUser(s.checkFavorite))
		r.Delete("/{id}", s.requireUser(s.removeFavorite))
	})
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", s.listComments)
		r.Get("/movie/{id}", s.commentsByMovie)
		r.Get("/user/{id}", s.commentsByUser)
		r.Post("/", s.requireUser(s.createComment))
		r.Put("/{id}", s.requireUser(s.updateComment))
		r.Delete("/{id}", s.requireUser(s.deleteComment))
	})
	r.Route("/ratings", func(r chi.Router) {
		r.Post("/", s.requireUser(s.submitRating))
		r.Get("/user", s.requireUser(s.userRating))
		r.Get("/average/pelicula/{id}", s.ratingAverage)
		r.Get("/average/tmdb/{id}", s.ratingAverage)
	})
}

// USERS

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Nombres    string `json:"nombres"`
		Apellidos  string `json:"apellidos"`
		Edad       int    `json:"edad"`
		Correo     string `json:"correo"`
		Contrasena string `json:"contrasena"`
	}
	if err := decode(r, &in); err != nil || in.Correo == "" || in.Contrasena == "" {
		respond(w, r, http.StatusBadRequest, nil, "Datos inválidos")
		return
	}
	if s.userByEmail(in.Correo) != nil {
		respond(w, r, http.StatusConflict, nil, "El correo ya está registrado")
		return
	}
	user := s.AddUser(models.User{Nombres: in.Nombres, Apellidos: in.Apellidos, Edad: in.Edad, Correo: in.Correo}, in.Contrasena)
	respond(w, r, http.StatusCreated, user, "Usuario registrado")
}

func (s *Server) userByEmail(email string) *storedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.user.Correo, email) || strings.EqualFold(u.user.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Correo     string `json:"correo"`
		Contrasena string `json:"contrasena"`
	}
	if err := decode(r, &in); err != nil {
		respond(w, r, http.StatusBadRequest, nil, "Datos inválidos")
		return
	}
	u := s.userByEmail(in.Correo)
	if u == nil || u.password != in.Contrasena {
		respond(w, r, http.StatusUnauthorized, nil, "Credenciales inválidas")
		return
	}
	respond(w, r, http.StatusOK, models.AuthData{Token: s.Token(u.user.ID.String()), User: &u.user}, "Inicio de sesión exitoso")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, nil, "Sesión cerrada")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, nil, "Si el correo existe, se enviaron instrucciones")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token           string `json:"token"`
		NuevaContrasena string `json:"nuevaContrasena"`
	}
	if err := decode(r, &in); err != nil || in.Token == "" {
		respond(w, r, http.StatusBadRequest, nil, "Token inválido o expirado")
		return
	}
	respond(w, r, http.StatusOK, nil, "Contraseña restablecida")
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userID(r)].user
	s.mu.Unlock()
	respond(w, r, http.StatusOK, u, "")
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Nombres    *string `json:"nombres"`
		Apellidos  *string `json:"apellidos"`
		Edad       *int    `json:"edad"`
		Contrasena *string `json:"contrasena"`
	}
	if err := decode(r, &in); err != nil {
		respond(w, r, http.StatusBadRequest, nil, "Datos inválidos")
		return
	}
	s.mu.Lock()
	u := s.users[userID(r)]
	if in.Nombres != nil {
		u.user.Nombres = *in.Nombres
	}
	if in.Apellidos != nil {
		u.user.Apellidos = *in.Apellidos
	}
	if in.Edad != nil {
		u.user.Edad = *in.Edad
	}
	if in.Contrasena != nil {
		u.password = *in.Contrasena
	}
	updated := u.user
	s.mu.Unlock()
	respond(w, r, http.StatusOK, updated, "Perfil actualizado")
}

func (s *Server) deleteMe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	_ = decode(r, &in)
	uid := userID(r)
	s.mu.Lock()
	ok := s.users[uid].password == in.Password
	if ok {
		delete(s.users, uid)
		delete(s.favorites, uid)
	}
	s.mu.Unlock()
	if !ok {
		respond(w, r, http.StatusForbidden, nil, "Contraseña incorrecta")
		return
	}
	respond(w, r, http.StatusOK, nil, "Cuenta eliminada")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.user)
	}
	s.mu.Unlock()
	respond(w, r, http.StatusOK, users, "")
}

// MOVIES

func limitOf(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func truncate(movies []models.Movie, limit int) []models.Movie {
	if limit > 0 && len(movies) > limit {
		return movies[:limit]
	}
	return movies
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	movies := append([]models.Movie{}, s.movies...)
	s.mu.Unlock()
	respond(w, r, http.StatusOK, truncate(movies, limitOf(r)), "")
}

func (s *Server) searchMovies(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(param(r, "term"))
	s.mu.Lock()
	found := []models.Movie{}
	for _, m := range s.movies {
		if strings.Contains(strings.ToLower(m.Title), term) {
			found = append(found, m)
		}
	}
	s.mu.Unlock()
	respond(w, r, http.StatusOK, found, "")
}

func (s *Server) moviesByGenre(w http.ResponseWriter, r *http.Request) {
	genre := param(r, "genre")
	s.mu.Lock()
	found := []models.Movie{}
	for _, id := range s.genres[genre] {
		if m, ok := s.movieLocked(id); ok {
			found = append(found, m)
		}
	}
	s.mu.Unlock()
	respond(w, r, http.StatusOK, truncate(found, limitOf(r)), "")
}

// movieLocked finds a movie by route id or internal reference. s.mu must be held.
func (s *Server) movieLocked(id string) (models.Movie, bool) {
	for _, m := range s.movies {
		if m.ID.String() == id || (!m.PeliculaID.IsZero() && m.PeliculaID.String() == id) {
			return m, true
		}
	}
	return models.Movie{}, false
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m, ok := s.movieLocked(param(r, "id"))
	s.mu.Unlock()
	if !ok {
		respond(w, r, http.StatusNotFound, nil, "Película no encontrada")
		return
	}
	respond(w, r, http.StatusOK, m, "")
}

func (s *Server) getTrailer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	link, ok := s.trailers[param(r, "id")]
	s.mu.Unlock()
	if !ok {
		respond(w, r, http.StatusNotFound, nil, "Tráiler no disponible")
		return
	}
	respond(w, r, http.StatusOK, link, "")
}

// FAVORITES

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, s.Favorites(userID(r)), "")
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		MovieID string `json:"movieId"`
	}
	if err := decode(r, &in); err != nil || in.MovieID == "" {
		respond(w, r, http.StatusBadRequest, nil, "movieId es obligatorio")
		return
	}
	fav := models.Favorite{
		ID:        newID(),
		UserID:    fields.FlexID(userID(r)),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if movieref.IsUUID(in.MovieID) {
		fav.PeliculaID = fields.FlexID(in.MovieID)
	} else {
		fav.TmdbID = fields.FlexID(in.MovieID)
	}
	s.mu.Lock()
	if s.EmbedMovies {
		if m, ok := s.movieLocked(in.MovieID); ok {
			fav.Movie = &m
		}
	}
	s.favorites[userID(r)] = append(s.favorites[userID(r)], fav)
	s.mu.Unlock()
	respond(w, r, http.StatusCreated, fav, "Película añadida a favoritos")
}

func favoriteMatches(f models.Favorite, id string) bool {
	return f.MovieReference() == id || f.PeliculaID.String() == id || f.TmdbID.String() == id || f.MovieID.String() == id
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	s.mu.Lock()
	favs := s.favorites[userID(r)]
	kept := favs[:0]
	removed := false
	for _, f := range favs {
		if favoriteMatches(f, id) {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	s.favorites[userID(r)] = kept
	s.mu.Unlock()
	if !removed {
		respond(w, r, http.StatusNotFound, nil, "Favorito no encontrado")
		return
	}
	respond(w, r, http.StatusOK, nil, "Película eliminada de favoritos")
}

func (s *Server) checkFavorite(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	found := false
	for _, f := range s.Favorites(userID(r)) {
		if favoriteMatches(f, id) {
			found = true
			break
		}
	}
	respond(w, r, http.StatusOK, models.FavoriteCheck{IsFavorite: found}, "")
}

func (s *Server) favoritesStats(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, models.FavoriteStats{Total: len(s.Favorites(userID(r)))}, "")
}

func (s *Server) clearFavorites(w http.ResponseWriter, r *http.Request) {
	s.SetFavorites(userID(r), nil)
	respond(w, r, http.StatusNoContent, nil, "")
}

// COMMENTS

func (s *Server) filterComments(keep func(storedComment) bool) []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if keep(c) {
			out = append(out, c.comment)
		}
	}
	return out
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, s.filterComments(func(storedComment) bool { return true }), "")
}

func (s *Server) commentsByMovie(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	s.mu.Lock()
	keys := map[string]bool{id: true}
	if m, ok := s.movieLocked(id); ok {
		keys[m.ID.String()] = true
		if !m.PeliculaID.IsZero() {
			keys[m.PeliculaID.String()] = true
		}
	}
	s.mu.Unlock()
	respond(w, r, http.StatusOK, s.filterComments(func(c storedComment) bool { return keys[c.movieKey] }), "")
}

func (s *Server) commentsByUser(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	respond(w, r, http.StatusOK, s.filterComments(func(c storedComment) bool { return c.comment.UserID.String() == id }), "")
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UsuarioID  string        `json:"usuario_id"`
		Contenido  string        `json:"contenido"`
		PeliculaID string        `json:"pelicula_id"`
		TmdbID     fields.FlexID `json:"tmdb_id"`
	}
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Contenido) == "" {
		respond(w, r, http.StatusBadRequest, nil, "El comentario no puede estar vacío")
		return
	}
	movieKey := in.PeliculaID
	if movieKey == "" {
		movieKey = in.TmdbID.String()
	}
	if movieKey == "" {
		respond(w, r, http.StatusBadRequest, nil, "pelicula_id o tmdb_id es obligatorio")
		return
	}
	s.mu.Lock()
	author := s.users[userID(r)].user
	s.mu.Unlock()
	c := s.AddComment(movieKey, models.Comment{
		Content: in.Contenido,
		UserID:  fields.FlexID(userID(r)),
		Author:  &models.CommentAuthor{ID: author.ID, Nombres: author.Nombres, Apellidos: author.Apellidos},
	})
	respond(w, r, http.StatusCreated, c, "Comentario creado")
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Contenido string `json:"contenido"`
	}
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Contenido) == "" {
		respond(w, r, http.StatusBadRequest, nil, "El comentario no puede estar vacío")
		return
	}
	id := param(r, "id")
	s.mu.Lock()
	for i := range s.comments {
		c := &s.comments[i].comment
		if c.ID.String() != id {
			continue
		}
		if c.UserID.String() != userID(r) {
			s.mu.Unlock()
			respond(w, r, http.StatusForbidden, nil, "No puedes editar este comentario")
			return
		}
		c.Content = in.Contenido
		c.Edited = true
		c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		updated := *c
		s.mu.Unlock()
		respond(w, r, http.StatusOK, updated, "Comentario actualizado")
		return
	}
	s.mu.Unlock()
	respond(w, r, http.StatusNotFound, nil, "Comentario no encontrado")
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	s.mu.Lock()
	for i, c := range s.comments {
		if c.comment.ID.String() != id {
			continue
		}
		if c.comment.UserID.String() != userID(r) {
			s.mu.Unlock()
			respond(w, r, http.StatusForbidden, nil, "No puedes eliminar este comentario")
			return
		}
		s.comments = append(s.comments[:i], s.comments[i+1:]...)
		s.mu.Unlock()
		respond(w, r, http.StatusOK, nil, "Comentario eliminado")
		return
	}
	s.mu.Unlock()
	respond(w, r, http.StatusNotFound, nil, "Comentario no encontrado")
}

// RATINGS

// movieKeyFor maps either identifier kind to the movie route id. s.mu must be held.
func (s *Server) movieKeyFor(peliculaID, tmdbID string) string {
	if peliculaID != "" {
		if m, ok := s.movieLocked(peliculaID); ok {
			return m.ID.String()
		}
		return peliculaID
	}
	return tmdbID
}

func (s *Server) submitRating(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rating     int           `json:"rating"`
		PeliculaID string        `json:"pelicula_id"`
		TmdbID     fields.FlexID `json:"tmdb_id"`
	}
	if err := decode(r, &in); err != nil || in.Rating < 1 || in.Rating > 5 {
		respond(w, r, http.StatusBadRequest, nil, "La calificación debe estar entre 1 y 5")
		return
	}
	s.mu.Lock()
	key := s.movieKeyFor(in.PeliculaID, in.TmdbID.String())
	s.mu.Unlock()
	if key == "" {
		respond(w, r, http.StatusBadRequest, nil, "pelicula_id o tmdb_id es obligatorio")
		return
	}
	s.SetRating(key, userID(r), in.Rating)
	respond(w, r, http.StatusOK, models.UserRating{Rating: in.Rating}, "Calificación guardada")
}

func (s *Server) userRating(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	key := s.movieKeyFor(q.Get("pelicula_id"), q.Get("tmdb_id"))
	s.mu.Unlock()
	v, ok := s.Rating(key, userID(r))
	if !ok {
		respond(w, r, http.StatusOK, nil, "Sin calificación")
		return
	}
	respond(w, r, http.StatusOK, models.UserRating{Rating: v}, "")
}

func (s *Server) ratingAverage(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	s.mu.Lock()
	var key string
	if strings.Contains(r.URL.Path, "/pelicula/") {
		key = s.movieKeyFor(id, "")
	} else {
		key = s.movieKeyFor("", id)
	}
	values := s.ratings[key]
	total := 0
	for _, v := range values {
		total += v
	}
	avg := models.RatingAverage{Count: len(values)}
	if len(values) > 0 {
		avg.Average = float64(total) / float64(len(values))
	}
	s.mu.Unlock()
	respond(w, r, http.StatusOK, avg, "")
}
