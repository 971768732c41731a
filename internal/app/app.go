package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apirepository "ctchen222/tictactoe/internal/api/repository"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 5 * time.Second

// App owns every long-lived dependency of the server.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	hub    *hub.Hub
	server *server.Server
	sqlDB  *sqlx.DB
	rdb    *redis.Client
}

// New connects the stores and builds the HTTP handler.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger.With("component", "app")}

	sessions := repository.NewMemorySessionRepository(cfg.Session.TTL)
	if cfg.Redis.ConnString != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.ConnString)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis: %w", err)
		}
		a.rdb = rdb
		sessions = repository.NewRedisSessionRepository(rdb, cfg.Session.TTL)
	}

	sqlDB, err := db.Connect(ctx, cfg.SQLite.DSN)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("could not open game history: %w", err)
	}
	a.sqlDB = sqlDB
	games := apirepository.NewGameRepository(sqlDB)

	tokens, err := service.NewTokenIssuer(cfg.Session.TokenSecret, cfg.Session.TokenTTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := validator.RegisterGin(); err != nil {
		a.Close()
		return nil, err
	}

	calculator := bot.NewBotMoveCalculator(nil)
	a.hub = hub.NewHub(hub.Config{
		Calculator:    calculator,
		Sessions:      sessions,
		History:       games,
		ComputerDelay: cfg.Game.ComputerDelay,
		IdleTimeout:   cfg.Game.RoomIdleTimeout,
	})
	sessionService := service.NewSessionService(a.hub, games, tokens, calculator)
	a.server = server.NewServer(sessionService, logger)
	return a, nil
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Engine()
}

// Run serves HTTP until ctx is cancelled, then closes every room and the stores.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()

	httpServer := &http.Server{
		Addr:    a.cfg.HTTPAddr,
		Handler: a.Handler(),
	}

	httpErrCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server", "addr", a.cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
	}()

	var runErr error
	select {
	case err := <-httpErrCh:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		a.log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Server forced to shutdown", "error", err)
	}

	stopHub()
	select {
	case <-hubDone:
	case <-shutdownCtx.Done():
		a.log.Warn("Rooms did not close in time")
	}
	return runErr
}

// Close releases the stores. Run calls it on exit.
func (a *App) Close() {
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.log.Error("could not close game history", "error", err)
		}
		a.sqlDB = nil
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("could not close redis", "error", err)
		}
		a.rdb = nil
	}
}

// GinMode picks gin's mode from the log level.
func GinMode(level string) string {
	if level == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
