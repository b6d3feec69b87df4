package models

import (
	"strconv"
	"strings"
	"time"

	"samfilms/client/internal/domain/fields"
	"samfilms/client/internal/domain/movieref"
)

const (
	UnknownUserName = "Usuario desconocido"
	DefaultPoster   = "https://via.placeholder.com/300x450/8b5cf6/ffffff?text=Sin+Imagen"
)

// User tolerates both naming conventions the backend uses for the same fields.
type User struct {
	ID        fields.FlexID `json:"id"`
	Nombres   string        `json:"nombres,omitempty"`
	Apellidos string        `json:"apellidos,omitempty"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Correo    string        `json:"correo,omitempty"`
	Email     string        `json:"email,omitempty"`
	Edad      int           `json:"edad,omitempty"`
	Age       int           `json:"age,omitempty"`
}

func (u *User) DisplayName() string {
	if u == nil {
		return UnknownUserName
	}
	if name := joinName(u.Nombres, u.Apellidos); name != "" {
		return name
	}
	if name := joinName(u.FirstName, u.LastName); name != "" {
		return name
	}
	return UnknownUserName
}

func (u *User) EmailAddress() string {
	if u == nil {
		return ""
	}
	if u.Correo != "" {
		return u.Correo
	}
	return u.Email
}

func (u *User) Years() int {
	if u == nil {
		return 0
	}
	if u.Edad != 0 {
		return u.Edad
	}
	return u.Age
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

type Movie struct {
	ID          fields.FlexID `json:"id"`
	Title       string        `json:"nombre"`
	Synopsis    string        `json:"sinopsis,omitempty"`
	ReleaseDate string        `json:"fecha_lanzamiento,omitempty"`
	Rating      *float64      `json:"calificacion,omitempty"`
	PosterURL   *string       `json:"imagen_url"`
	GenreIDs    []int         `json:"genero_ids,omitempty"`

	// Internal references some deployments attach to catalog entries.
	PeliculaID    fields.FlexID `json:"pelicula_id,omitempty"`
	PeliculaIDAlt fields.FlexID `json:"peliculaId,omitempty"`
	MovieID       fields.FlexID `json:"movie_id,omitempty"`
	Embedded      *Movie        `json:"movie,omitempty"`
}

func (m *Movie) Year() string {
	if m == nil || m.ReleaseDate == "" {
		return "N/A"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, m.ReleaseDate); err == nil {
			return strconv.Itoa(t.Year())
		}
	}
	return "N/A"
}

func (m *Movie) PosterOrDefault() string {
	if m == nil || m.PosterURL == nil || *m.PosterURL == "" {
		return DefaultPoster
	}
	return *m.PosterURL
}

func (m *Movie) RefCandidates() movieref.Candidates {
	c := movieref.Candidates{
		InternalRef:    m.PeliculaID.String(),
		AltInternalRef: m.PeliculaIDAlt.String(),
		MovieIDRef:     m.MovieID.String(),
		ID:             m.ID.String(),
	}
	if m.Embedded != nil {
		c.EmbeddedID = m.Embedded.ID.String()
	}
	return c
}

type Favorite struct {
	ID         fields.FlexID `json:"id"`
	PeliculaID fields.FlexID `json:"pelicula_id,omitempty"`
	MovieID    fields.FlexID `json:"movie_id,omitempty"`
	TmdbID     fields.FlexID `json:"tmdb_id,omitempty"`
	UserID     fields.FlexID `json:"usuario_id"`
	CreatedAt  string        `json:"created_at,omitempty"`
	Movie      *Movie        `json:"movie,omitempty"`
}

// MovieReference returns the first present value among the embedded movie id, the
// internal reference, the alternate reference and the external id.
func (f *Favorite) MovieReference() string {
	var embedded fields.FlexID
	if f.Movie != nil {
		embedded = f.Movie.ID
	}
	for _, id := range []fields.FlexID{embedded, f.PeliculaID, f.MovieID, f.TmdbID} {
		if !id.IsZero() {
			return id.String()
		}
	}
	return ""
}

type FavoriteCheck struct {
	IsFavorite bool `json:"isFavorite"`
}

type FavoriteStats struct {
	Total int `json:"total"`
}

type CommentAuthor struct {
	ID        fields.FlexID `json:"id,omitempty"`
	Nombres   string        `json:"nombres,omitempty"`
	Apellidos string        `json:"apellidos,omitempty"`
}

type Comment struct {
	ID        fields.FlexID  `json:"id"`
	Content   string         `json:"contenido"`
	UserID    fields.FlexID  `json:"usuario_id"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
	Edited    bool           `json:"editado,omitempty"`
	Author    *CommentAuthor `json:"users,omitempty"`
}

func (c *Comment) IsOwnedBy(userID string) bool {
	if userID == "" {
		return false
	}
	if c.UserID.String() == userID {
		return true
	}
	return c.Author != nil && c.Author.ID.String() == userID
}

func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return ""
	}
	return joinName(c.Author.Nombres, c.Author.Apellidos)
}

type RatingAverage struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type UserRating struct {
	Rating int `json:"rating"`
}

// AuthData is the payload of a successful login.
type AuthData struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
