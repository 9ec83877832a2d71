package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vedran77/switchboard/internal/auth"
	"github.com/vedran77/switchboard/internal/cache"
	"github.com/vedran77/switchboard/internal/config"
	"github.com/vedran77/switchboard/internal/database"
	"github.com/vedran77/switchboard/internal/observability"
	"github.com/vedran77/switchboard/internal/repository"
	"github.com/vedran77/switchboard/internal/repository/memory"
	"github.com/vedran77/switchboard/internal/repository/postgres"
	"github.com/vedran77/switchboard/internal/service"
	"github.com/vedran77/switchboard/internal/transport/http/handlers"
	"github.com/vedran77/switchboard/internal/transport/ws"
	"github.com/vedran77/switchboard/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the relay",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		errutil.LogError(logger, "startup failed", err)
		return err
	}
	defer srv.close()

	return srv.run(ctx)
}

// server owns every long-lived dependency of the serve command.
type server struct {
	http    *http.Server
	hub     *ws.Hub
	logger  *slog.Logger
	closers []func()
}

func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *server, err error) {
	s := &server{logger: logger}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if cfg.SecretGenerated {
		logger.Warn("no secret_key configured, using a random per-process secret; tokens will not survive a restart")
	}

	var (
		users    repository.UserRepository
		tx       repository.Transactor
		dbPinger handlers.Pinger
	)
	switch cfg.Store {
	case config.StorePostgres:
		if cfg.AutoMigrate {
			if err := migrateUp(cfg.PostgresDSN, logger); err != nil {
				return nil, err
			}
		}
		pool, err := database.Connect(ctx, cfg.PostgresDSN, cfg.ConnectionPoolSize, cfg.ConnectRetries, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		users = postgres.NewUserRepo(pool)
		tx = postgres.NewTransactor(pool)
		dbPinger = pool
	default:
		logger.Warn("using in-memory user store; accounts are lost on exit")
		users = memory.NewUserRepo()
		tx = memory.NewTransactor()
	}

	var redisPinger handlers.Pinger
	if cfg.RedisDSN != "" {
		rdb, err := cache.New(cfg.RedisDSN, cfg.ConnectionPoolSize)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		redisPinger = rdb
	}

	reg := observability.NewRegistry()
	metrics := observability.NewMetrics(reg)

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.AccessTokenTTL())

	s.hub = ws.NewHub(logger, metrics)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(service.NewAuthService(users, tx, hasher, tokens, logger), metrics, logger),
		Users:          handlers.NewUserHandler(service.NewUserService(users, tx, hasher, logger), logger),
		Health:         handlers.NewHealthHandler(dbPinger, redisPinger, logger),
		Resolver:       service.NewIdentityResolver(tokens, users),
		Hub:            s.hub,
		Registry:       reg,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	return s, nil
}

func migrateUp(dsn string, logger *slog.Logger) error {
	m, err := database.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := m.Up(); err != nil {
		return err
	}
	v, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("schema up to date", "version", v)
	return nil
}

// run serves until ctx is cancelled, then drains HTTP and closes relay
// connections, which http.Server.Shutdown does not track.
func (s *server) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	httpErr := s.http.Shutdown(shutdownCtx)
	hubErr := s.hub.Shutdown(shutdownCtx)
	if err := errors.Join(httpErr, hubErr); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
