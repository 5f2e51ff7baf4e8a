package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hszk-dev/catalog/internal/config"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/catalog/internal/infrastructure/queue"
	"github.com/hszk-dev/catalog/internal/infrastructure/search"
	"github.com/hszk-dev/catalog/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	esClient, err := search.NewClient(search.ClientConfig{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Index:     cfg.Elasticsearch.Index,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	logger.Info("connected to Elasticsearch")

	// No live-only scope here: the projector keeps soft-deleted documents in
	// the index with their deleted_at set.
	searchRepo := search.NewVideoRepository(esClient, cfg.Elasticsearch.Index)

	queueCfg := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
	queueCfg.Prefetch = cfg.Indexer.Prefetch
	queueClient, err := queue.NewClient(ctx, queueCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	factory := func() (repository.UnitOfWork, usecase.Repositories) {
		uow := postgres.NewUnitOfWork(pgClient.Pool())
		return uow, usecase.Repositories{
			Videos:      postgres.NewVideoRepository(uow),
			Categories:  postgres.NewCategoryRepository(uow),
			Genres:      postgres.NewGenreRepository(uow),
			CastMembers: postgres.NewCastMemberRepository(uow),
		}
	}
	projectionSvc := usecase.NewVideoProjectionService(factory, searchRepo)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// WaitGroup tracks events still being projected.
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting indexer, consuming catalog events")
		err := queueClient.Consume(ctx, func(event repository.CatalogEvent) error {
			wg.Add(1)
			defer wg.Done()

			logger.Info("projecting event",
				slog.String("entity_type", event.EntityType),
				slog.String("entity_id", event.EntityID),
				slog.String("operation", event.Operation),
			)

			if err := projectionSvc.HandleEvent(ctx, event); err != nil {
				logger.Error("projection failed",
					slog.String("entity_type", event.EntityType),
					slog.String("entity_id", event.EntityID),
					slog.String("operation", event.Operation),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down indexer", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Indexer.ShutdownTimeout)
	defer shutdownCancel()

	// Stop consuming new events, then drain the in-flight ones.
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight events projected")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some events may be redelivered")
	}

	logger.Info("indexer stopped")
	return nil
}
