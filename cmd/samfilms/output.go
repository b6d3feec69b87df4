package main

import (
	"fmt"
	"io"

	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/services/watch"
)

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "Nombre: %s\nCorreo: %s\nEdad:   %d\n", u.DisplayName(), u.EmailAddress(), u.Years())
}

func printMovies(w io.Writer, movies []models.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(w, "No se encontraron películas")
		return
	}
	for i := range movies {
		m := &movies[i]
		fmt.Fprintf(w, "%-10s %s (%s)\n", m.ID, m.Title, m.Year())
	}
}

func printComments(w io.Writer, comments []models.Comment) {
	for i := range comments {
		c := &comments[i]
		author := c.AuthorName()
		if author == "" {
			author = models.UnknownUserName
		}
		edited := ""
		if c.Edited {
			edited = " (editado)"
		}
		fmt.Fprintf(w, "[%s] %s%s: %s\n", c.ID, author, edited, c.Content)
	}
}

func printWatch(w io.Writer, st watch.State) {
	m := st.Movie
	fmt.Fprintf(w, "%s (%s)\n", m.Title, m.Year())
	if m.Synopsis != "" {
		fmt.Fprintln(w, m.Synopsis)
	}
	fmt.Fprintf(w, "Póster: %s\n", m.PosterOrDefault())
	if st.Trailer != "" {
		fmt.Fprintf(w, "Tráiler: %s\n", st.Trailer)
	} else {
		fmt.Fprintln(w, "Tráiler no disponible")
	}
	fav := "no"
	if st.IsFavorite {
		fav = "sí"
	}
	fmt.Fprintf(w, "Favorito: %s\n", fav)
	fmt.Fprintf(w, "Calificación: %.1f (%d votos)", st.Average, st.Count)
	if st.UserRating > 0 {
		fmt.Fprintf(w, "  tu voto: %d", st.UserRating)
	}
	fmt.Fprintln(w)
	printComments(w, st.Comments)
}
