package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowv/blog/internal/config"
	"github.com/meowv/blog/internal/migrate"
	"github.com/meowv/blog/internal/oauth"
	"github.com/meowv/blog/internal/repository"
	"github.com/meowv/blog/internal/service"
	"github.com/meowv/blog/internal/token"
	"github.com/meowv/blog/migrations"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg            *config.Config
	db             *pgxpool.Pool
	rdb            *redis.Client
	issuer         *token.Issuer
	states         oauth.StateStore
	cleanupService *service.CleanupService
	router         http.Handler
	logger         *slog.Logger
}

func New(cfg *config.Config, issuer *token.Issuer, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		issuer: issuer,
		logger: logger,
	}
	ctx := context.Background()

	// Connect to PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	s.db = dbPool
	logger.Info("connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.Name)

	if err := migrate.Run(ctx, dbPool, migrations.FS, logger); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Redis is only needed when it holds the OAuth state.
	switch cfg.Authorize.StateBackend {
	case config.StateBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Network:  cfg.Redis.Network(),
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.rdb = rdb
		s.states = oauth.NewRedisStateStore(rdb, cfg.Authorize.StateTTL, logger)
		logger.Info("connected to Redis", "addr", cfg.Redis.Addr())
	default:
		s.states = oauth.NewMemoryStateStore(cfg.Authorize.StateTTL)
		logger.Warn("oauth state kept in memory; use a single instance")
	}

	s.cleanupService = service.NewCleanupService(repository.New(dbPool), cfg.Cleanup, logger)

	s.router = s.setupRoutes()

	return s, nil
}

// Start serves HTTP and runs the cleanup worker until SIGINT/SIGTERM or
// until either fails, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         s.cfg.Server.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.cleanupService.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()

	s.db.Close()
	if s.rdb != nil {
		s.rdb.Close()
	}
	s.logger.Info("server stopped")

	return err
}
