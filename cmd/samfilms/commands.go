package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/services"
	"samfilms/client/internal/services/auth"
	"samfilms/client/internal/services/catalog"
	"samfilms/client/internal/services/guard"
)

var errUsage = errors.New("invalid arguments")

type command struct {
	args  string
	route string // guarded route the command belongs to, if any
	run   func(app *Application, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"health":         {run: (*Application).health},
	"register":       {run: (*Application).register},
	"login":          {args: "<email> <password>", run: (*Application).login},
	"logout":         {run: (*Application).logout},
	"forgot":         {args: "<email>", run: (*Application).forgot},
	"reset":          {args: "<token> <password> <confirm>", run: (*Application).reset},
	"whoami":         {route: "/perfil", run: (*Application).whoami},
	"profile":        {route: "/perfil", run: (*Application).profile},
	"delete-account": {args: "<password>", route: "/perfil", run: (*Application).deleteAccount},
	"genres":         {run: (*Application).genres},
	"movies":         {route: "/peliculas", run: (*Application).movies},
	"search":         {route: "/peliculas", run: (*Application).search},
	"watch":          {args: "<id>", route: "/peliculas", run: (*Application).watch},
	"fav":            {args: "<id>", route: "/peliculas", run: (*Application).fav},
	"favorites":      {route: "/peliculas", run: (*Application).favorites},
	"unfav":          {args: "<ref>", route: "/peliculas", run: (*Application).unfav},
	"rate":           {args: "<id> <1-5>", route: "/peliculas", run: (*Application).rate},
	"comment":        {args: "<id> <text>", route: "/peliculas", run: (*Application).comment},
	"edit-comment":   {args: "<id> <comment> <text>", route: "/peliculas", run: (*Application).editComment},
	"delete-comment": {args: "<id> <comment>", route: "/peliculas", run: (*Application).deleteComment},
}

// run executes one command and returns the process exit code.
func (app *Application) run(ctx context.Context, name string, args []string) int {
	const op = "main.Application.run"
	log := app.log.With("op", op, "command", name)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(app.out, "comando desconocido: %s\n", name)
		return 2
	}
	if cmd.route != "" {
		redirect, err := app.services.Guard.Check(ctx, cmd.route)
		if err != nil {
			log.Error("Error checking session", "errMsg", err.Error())
			fmt.Fprintln(app.out, services.UserMessage(err))
			return 1
		}
		if redirect != "" {
			fmt.Fprintf(app.out, "%s (%s): samfilms login <correo> <contraseña>\n", guard.ErrUnauthenticated.Error(), redirect)
			return 1
		}
	}
	if err := cmd.run(app, ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(app.out, "uso: samfilms %s %s\n", name, cmd.args)
			return 2
		}
		log.Debug("command failed", "errMsg", err.Error())
		fmt.Fprintln(app.out, services.UserMessage(err))
		return 1
	}
	return 0
}

func needArgs(args []string, n int) error {
	if len(args) < n {
		return errUsage
	}
	return nil
}

func (app *Application) health(ctx context.Context, _ []string) error {
	if app.api.Health(ctx) {
		fmt.Fprintf(app.out, "ok %s\n", app.api.BaseURL())
		return nil
	}
	return &backend.ConnectionError{Endpoint: "/health"}
}

func (app *Application) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(app.out)
	var form auth.RegisterForm
	fs.StringVar(&form.Nombres, "nombres", "", "first names")
	fs.StringVar(&form.Apellidos, "apellidos", "", "last names")
	fs.IntVar(&form.Edad, "edad", 0, "age")
	fs.StringVar(&form.Correo, "correo", "", "email")
	fs.StringVar(&form.Contrasena, "password", "", "password")
	fs.StringVar(&form.Confirmacion, "confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	msg, err := app.services.Auth.Register(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *Application) login(ctx context.Context, args []string) error {
	if err := needArgs(args, 2); err != nil {
		return err
	}
	user, err := app.services.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Bienvenido, %s\n", user.DisplayName())
	return nil
}

func (app *Application) logout(ctx context.Context, _ []string) error {
	if err := app.services.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Sesión cerrada")
	return nil
}

func (app *Application) forgot(ctx context.Context, args []string) error {
	if err := needArgs(args, 1); err != nil {
		return err
	}
	msg, err := app.services.Auth.ForgotPassword(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *Application) reset(ctx context.Context, args []string) error {
	if err := needArgs(args, 3); err != nil {
		return err
	}
	msg, err := app.services.Auth.ResetPassword(ctx, auth.ResetForm{Token: args[0], Contrasena: args[1], Confirmacion: args[2]})
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, msg)
	return nil
}

func (app *Application) whoami(ctx context.Context, _ []string) error {
	p, err := app.services.Guard.Require(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "%s <%s>\n", p.User.DisplayName(), p.User.EmailAddress())
	return nil
}

func (app *Application) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(app.out)
	nombres := fs.String("nombres", "", "new first names")
	apellidos := fs.String("apellidos", "", "new last names")
	edad := fs.Int("edad", 0, "new age")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := app.services.Profile.Load(ctx)
	if err != nil {
		return err
	}
	var in backend.UpdateProfileInput
	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "nombres":
			in.Nombres = nombres
		case "apellidos":
			in.Apellidos = apellidos
		case "edad":
			in.Edad = edad
		case "password":
			in.Contrasena = password
		}
	})
	if changed {
		if user, err = app.services.Profile.Update(ctx, in); err != nil {
			return err
		}
	}
	printUser(app.out, user)
	return nil
}

func (app *Application) deleteAccount(ctx context.Context, args []string) error {
	if err := needArgs(args, 1); err != nil {
		return err
	}
	if err := app.services.Profile.DeleteAccount(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Cuenta eliminada")
	return nil
}

func (app *Application) genres(_ context.Context, _ []string) error {
	for _, g := range catalog.Genres {
		fmt.Fprintf(app.out, "%-16s %s\n", g.ID, g.Name)
	}
	return nil
}

func (app *Application) movies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("movies", flag.ContinueOnError)
	fs.SetOutput(app.out)
	genre := fs.String("genre", catalog.AllGenres, "genre to filter by")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	movies, err := app.services.Catalog.Load(ctx, *genre)
	if err != nil {
		return err
	}
	printMovies(app.out, movies)
	return nil
}

// search treats each stdin line as the current contents of the search box and
// waits for the results of the last one.
func (app *Application) search(ctx context.Context, _ []string) error {
	results := make(chan catalog.SearchResult, 64)
	app.services.Catalog.OnResults(func(r catalog.SearchResult) {
		select {
		case results <- r:
		default:
		}
	})

	var last string
	lines := bufio.NewScanner(app.in)
	for lines.Scan() {
		app.services.Catalog.Search(lines.Text())
		last = strings.TrimSpace(lines.Text())
	}
	if err := lines.Err(); err != nil {
		return err
	}
	if last == "" {
		return nil
	}
	app.services.Catalog.FlushSearch()
	for {
		select {
		case r := <-results:
			if r.Term != last {
				continue
			}
			if r.Err != nil {
				return r.Err
			}
			fmt.Fprintf(app.out, "== %s\n", r.Term)
			printMovies(app.out, r.Movies)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (app *Application) watch(ctx context.Context, args []string) error {
	if err := needArgs(args, 1); err != nil {
		return err
	}
	st, err := app.services.Watch.Open(ctx, args[0])
	if err != nil {
		return err
	}
	printWatch(app.out, st)
	return nil
}

func (app *Application) fav(ctx context.Context, args []string) error {
	if err := needArgs(args, 1); err != nil {
		return err
	}
	if _, err := app.services.Watch.Open(ctx, args[0]); err != nil {
		return err
	}
	on, err := app.services.Watch.ToggleFavorite(ctx)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintln(app.out, "Película añadida correctamente")
	} else {
		fmt.Fprintln(app.out, "Película eliminada de favoritos correctamente")
	}
	return nil
}

func (app *Application) favorites(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("favorites", flag.ContinueOnError)
	fs.SetOutput(app.out)
	clearAll := fs.Bool("clear", false, "remove every favorite")
	stats := fs.Bool("stats", false, "show totals only")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	switch {
	case *clearAll:
		if err := app.services.Favorites.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(app.out, "Favoritos eliminados")
		return nil
	case *stats:
		st, err := app.services.Favorites.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Total: %d\n", st.Total)
		return nil
	}
	entries, err := app.services.Favorites.Load(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(app.out, "%-38s %s (%s)\n", e.Ref, e.Movie.Title, e.Movie.Year())
	}
	return nil
}

func (app *Application) unfav(ctx context.Context, args []string) error {
	if err := needArgs(args, 1); err != nil {
		return err
	}
	if _, err := app.services.Favorites.Load(ctx); err != nil {
		return err
	}
	if err := app.services.Favorites.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Película eliminada de favoritos correctamente")
	return nil
}

func (app *Application) rate(ctx context.Context, args []string) error {
	if err := needArgs(args, 2); err != nil {
		return err
	}
	star, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	if _, err := app.services.Watch.Open(ctx, args[0]); err != nil {
		return err
	}
	if err := app.services.Watch.Rate(ctx, star); err != nil {
		return err
	}
	st := app.services.Watch.State()
	fmt.Fprintf(app.out, "Tu calificación: %d  Promedio: %.1f (%d)\n", st.UserRating, st.Average, st.Count)
	return nil
}

func (app *Application) comment(ctx context.Context, args []string) error {
	if err := needArgs(args, 2); err != nil {
		return err
	}
	if _, err := app.services.Watch.Open(ctx, args[0]); err != nil {
		return err
	}
	if err := app.services.Watch.Comment(ctx, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	printComments(app.out, app.services.Watch.State().Comments)
	return nil
}

func (app *Application) editComment(ctx context.Context, args []string) error {
	if err := needArgs(args, 3); err != nil {
		return err
	}
	if _, err := app.services.Watch.Open(ctx, args[0]); err != nil {
		return err
	}
	if err := app.services.Watch.EditComment(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	printComments(app.out, app.services.Watch.State().Comments)
	return nil
}

func (app *Application) deleteComment(ctx context.Context, args []string) error {
	if err := needArgs(args, 2); err != nil {
		return err
	}
	if _, err := app.services.Watch.Open(ctx, args[0]); err != nil {
		return err
	}
	if err := app.services.Watch.DeleteComment(ctx, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Comentario eliminado")
	return nil
}
