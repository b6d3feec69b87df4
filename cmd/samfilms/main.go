package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"samfilms/client/internal/config"
	"samfilms/client/internal/lib/logger"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "", "path to config file (environment only when empty)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApplication(cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		log.Error("Error starting client", "errMsg", err.Error())
		os.Exit(1)
	}
	code := app.run(ctx, flag.Arg(0), flag.Args()[1:])
	app.Close()
	os.Exit(code)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: samfilms [-config path] <command> [args]

Commands:
  health                              check that the backend is reachable
  register [flags]                    create an account
  login <email> <password>            start a session
  logout                              end the session
  whoami                              show the logged-in user
  profile [flags]                     show or edit the profile
  delete-account <password>           delete the account
  forgot <email>                      request a password reset
  reset <token> <password> <confirm>  set a new password
  genres                              list genres
  movies [-genre name]                list the catalog
  search                              search titles typed on stdin, one per line
  watch <id>                          show a movie
  fav <id>                            toggle a movie in favorites
  favorites [-clear] [-stats]         list favorites
  unfav <ref>                         remove a favorite
  rate <id> <1-5>                     rate a movie
  comment <id> <text>                 comment on a movie
  edit-comment <id> <comment> <text>  edit one of your comments
  delete-comment <id> <comment>       delete one of your comments

Flags:
`)
	flag.PrintDefaults()
}
