package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/config"
	"samfilms/client/internal/lib/tasks"
	"samfilms/client/internal/services"
	"samfilms/client/internal/session"
	"samfilms/client/internal/storage/sqlite"
)

const shutdownTimeout = 2 * time.Second

type Application struct {
	cfg      *config.Config
	log      *slog.Logger
	in       io.Reader
	out      io.Writer
	storage  *sqlite.Storage
	pool     *tasks.Pool
	session  *session.Store
	api      *backend.Client
	services *services.Services
}

func NewApplication(cfg *config.Config, log *slog.Logger, in io.Reader, out io.Writer) (*Application, error) {
	storage, err := sqlite.New(cfg.Session.DataDir)
	if err != nil {
		return nil, err
	}
	pool := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	pool.Run()

	store := session.New(log, storage, pool)
	store.Subscribe(func(ev session.Event) {
		log.Debug("session changed", "op", "main.sessionListener", "event", ev.Kind)
	})
	api := backend.New(log, cfg.API.BaseURL, store, cfg.API.Timeout)

	return &Application{
		cfg:      cfg,
		log:      log,
		in:       in,
		out:      out,
		storage:  storage,
		pool:     pool,
		session:  store,
		api:      api,
		services: services.New(log, cfg, api, store),
	}, nil
}

// Close waits for pending session notifications and releases the storage.
func (app *Application) Close() {
	const op = "main.Application.Close"
	log := app.log.With("op", op)
	app.services.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.pool.Shutdown(ctx); err != nil {
		log.Warn("Error stopping background tasks", "errMsg", err.Error())
	}
	if err := app.storage.Close(); err != nil {
		log.Warn("Error closing session storage", "errMsg", err.Error())
	}
}
