package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/nexus-console/internal/api/http"
	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/config"
	"github.com/spec-kit/nexus-console/internal/observability"
	"github.com/spec-kit/nexus-console/internal/persistence"
	"github.com/spec-kit/nexus-console/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	repos := repository.NewMemoryRepositories()
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresRepositories(pg.PoolHandle())
	}

	hash, err := auth.HashPassword(cfg.Auth.SeedPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}
	seeded, err := repository.Seed(ctx, repos, hash)
	if err != nil {
		logger.Fatal("failed to seed data", zap.Error(err))
	}
	if seeded {
		logger.Info("seeded demo data")
	}

	var (
		redis       *persistence.Redis
		revocations auth.RevocationList = auth.NewMemoryRevocations()
	)
	if cfg.Redis.Enabled {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		revocations = persistence.NewRedisRevocations(redis.Client)
	}

	server := httptransport.NewServer(cfg, httptransport.ServerDependencies{
		Repos:       repos,
		Revocations: revocations,
		Postgres:    pg,
		Redis:       redis,
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
	})

	go func() {
		logger.Info("devserver listening", zap.String("addr", cfg.App.Addr()), zap.String("api", httptransport.APIPrefix))
		if err := server.App.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = server.App.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
