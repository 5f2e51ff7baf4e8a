package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/catalog/internal/api/handler"
	"github.com/hszk-dev/catalog/internal/api/middleware"
	"github.com/hszk-dev/catalog/internal/config"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/infrastructure/cache"
	"github.com/hszk-dev/catalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/catalog/internal/infrastructure/queue"
	"github.com/hszk-dev/catalog/internal/infrastructure/search"
	"github.com/hszk-dev/catalog/internal/infrastructure/storage"
	"github.com/hszk-dev/catalog/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pgClient.Close()

	esClient, err := search.NewClient(search.ClientConfig{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Index:     cfg.Elasticsearch.Index,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	searchRepo := search.NewVideoRepository(esClient, cfg.Elasticsearch.Index)
	searchRepo.AttachScope(search.LiveOnly)

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to minio: %w", err)
	}

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer queueClient.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	videoCache := cache.NewRedisVideoCache(redisClient)

	factory := func() (repository.UnitOfWork, usecase.Repositories) {
		uow := postgres.NewUnitOfWork(pgClient.Pool())
		return uow, usecase.Repositories{
			Videos:      postgres.NewVideoRepository(uow),
			Categories:  postgres.NewCategoryRepository(uow),
			Genres:      postgres.NewGenreRepository(uow),
			CastMembers: postgres.NewCastMemberRepository(uow),
		}
	}

	videoSvc := usecase.NewCachedVideoService(
		usecase.NewVideoService(factory, searchRepo, storageClient, queueClient),
		videoCache,
		usecase.CachedVideoServiceConfig{CacheTTL: cfg.Redis.VideoTTL},
	)
	categorySvc := usecase.NewCategoryService(factory, queueClient)
	genreSvc := usecase.NewGenreService(factory, queueClient)
	castMemberSvc := usecase.NewCastMemberService(factory, queueClient)

	r := setupRouter(logger, videoSvc, categorySvc, genreSvc, castMemberSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(
	logger *slog.Logger,
	videoSvc usecase.VideoService,
	categorySvc usecase.CategoryService,
	genreSvc usecase.GenreService,
	castMemberSvc usecase.CastMemberService,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	videoHandler := handler.NewVideoHandler(videoSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	genreHandler := handler.NewGenreHandler(genreSvc)
	castMemberHandler := handler.NewCastMemberHandler(castMemberSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/videos", func(r chi.Router) {
			r.Post("/", videoHandler.Create)
			r.Get("/", videoHandler.List)
			r.Get("/{id}", videoHandler.Get)
			r.Put("/{id}", videoHandler.Update)
			r.Delete("/{id}", videoHandler.Delete)
			r.Post("/{id}/medias", videoHandler.UploadMedias)
			r.Put("/{id}/medias/status", videoHandler.UpdateMediaStatus)
			r.Get("/{id}/medias/{type}", videoHandler.GetMediaURL)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.Create)
			r.Get("/", categoryHandler.List)
			r.Get("/{id}", categoryHandler.Get)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})
		r.Route("/genres", func(r chi.Router) {
			r.Post("/", genreHandler.Create)
			r.Get("/", genreHandler.List)
			r.Get("/{id}", genreHandler.Get)
			r.Put("/{id}", genreHandler.Update)
			r.Delete("/{id}", genreHandler.Delete)
		})
		r.Route("/cast-members", func(r chi.Router) {
			r.Post("/", castMemberHandler.Create)
			r.Get("/", castMemberHandler.List)
			r.Get("/{id}", castMemberHandler.Get)
			r.Put("/{id}", castMemberHandler.Update)
			r.Delete("/{id}", castMemberHandler.Delete)
		})
	})

	return r
}
