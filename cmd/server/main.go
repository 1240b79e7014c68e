// Command server runs the solutions and items HTTP API.
//
// Configuration comes from the environment (see internal/config); a .env
// file in the working directory is loaded first when present.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-crud-backend/internal/config"
	httpapi "github.com/tbourn/go-crud-backend/internal/http"
	"github.com/tbourn/go-crud-backend/internal/observability"
	"github.com/tbourn/go-crud-backend/internal/repo"
	"github.com/tbourn/go-crud-backend/internal/services"
	"github.com/tbourn/go-crud-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sysutil.SetupLogger("info", false, nil)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Stack().Err(err).Msg("server exited")
	}
}

// run wires the stores, tracer and router, serves until ctx is done, then
// drains in-flight requests for at most cfg.ShutdownTimeout.
func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version, cfg.Environment)
	if err != nil {
		return errors.Wrap(err, "setup tracing")
	}

	clients := newClients(cfg)
	defer func() {
		if err := clients.Close(); err != nil {
			log.Warn().Err(err).Msg("closing store clients")
		}
	}()

	db, err := clients.DB()
	if err != nil {
		return errors.Wrap(err, "open relational store")
	}
	docs, err := newDocStore(ctx, cfg, clients)
	if err != nil {
		return errors.Wrap(err, "open document store")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, docs, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Environment).
			Str("db_driver", cfg.DB.Driver).
			Str("doc_store", cfg.DocStore).
			Str("version", version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "listen")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownTracing(shCtx); err != nil {
		log.Warn().Err(err).Msg("flushing traces")
	}
	log.Info().Msg("server stopped")
	return nil
}

func newClients(cfg config.Config) *repo.Clients {
	return repo.NewClients(
		repo.DBOptions{
			Driver:  cfg.DB.Driver,
			Path:    cfg.DB.Path,
			URL:     cfg.DB.URL,
			Tracing: cfg.OTEL.Enabled,
			Log:     repo.GormLogOptions{LogQueries: cfg.LogLevel == "debug"},
		},
		repo.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	)
}

// newDocStore selects the solution document store named by cfg.DocStore.
func newDocStore(ctx context.Context, cfg config.Config, clients *repo.Clients) (services.SolutionStore, error) {
	switch cfg.DocStore {
	case config.DocStoreRedis:
		client, err := clients.Redis(ctx)
		if err != nil {
			return nil, err
		}
		return repo.NewRedisSolutions(client), nil
	case config.DocStoreSQL, "":
		db, err := clients.DB()
		if err != nil {
			return nil, err
		}
		return repo.NewSQLSolutions(db), nil
	default:
		return nil, errors.Errorf("unknown document store %q", cfg.DocStore)
	}
}
