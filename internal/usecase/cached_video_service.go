package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/infrastructure/cache"
	"github.com/hszk-dev/catalog/internal/infrastructure/metrics"
)

// CachedVideoServiceConfig holds configuration for CachedVideoService.
type CachedVideoServiceConfig struct {
	// CacheTTL is the TTL for cached video metadata.
	CacheTTL time.Duration
}

// DefaultCachedVideoServiceConfig returns the default configuration.
func DefaultCachedVideoServiceConfig() CachedVideoServiceConfig {
	return CachedVideoServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedVideoService wraps VideoService with caching capabilities.
// It implements the decorator pattern to add caching without modifying the
// underlying service.
type cachedVideoService struct {
	delegate VideoService
	cache    cache.VideoCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedVideoService creates a new CachedVideoService wrapping the
// provided VideoService.
func NewCachedVideoService(
	delegate VideoService,
	videoCache cache.VideoCache,
	cfg CachedVideoServiceConfig,
) VideoService {
	return &cachedVideoService{
		delegate: delegate,
		cache:    videoCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// CreateVideo delegates to the underlying service. Nothing to invalidate:
// the id is new.
func (s *cachedVideoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	return s.delegate.CreateVideo(ctx, input)
}

// UpdateVideo delegates and invalidates the cached entry so the next read
// sees the new state.
func (s *cachedVideoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	video, err := s.delegate.UpdateVideo(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ID)
	return video, nil
}

func (s *cachedVideoService) DeleteVideo(ctx context.Context, id model.VideoID) error {
	if err := s.delegate.DeleteVideo(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// GetVideo retrieves video information through the cache. Singleflight
// coalesces concurrent requests for the same id so a cold entry hits the
// database once.
func (s *cachedVideoService) GetVideo(ctx context.Context, id model.VideoID) (*model.Video, error) {
	key := id.String()
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getVideoWithCache(ctx, id)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}
	return result.(*model.Video), nil
}

// SearchVideos delegates to the underlying service; result pages are not
// cached.
func (s *cachedVideoService) SearchVideos(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
	return s.delegate.SearchVideos(ctx, params)
}

func (s *cachedVideoService) UploadMedias(ctx context.Context, input UploadMediasInput) error {
	if err := s.delegate.UploadMedias(ctx, input); err != nil {
		return err
	}
	s.invalidate(ctx, input.VideoID)
	return nil
}

func (s *cachedVideoService) UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error {
	if err := s.delegate.UpdateMediaStatus(ctx, input); err != nil {
		return err
	}
	s.invalidate(ctx, input.VideoID)
	return nil
}

// GetMediaDownloadURL delegates to the underlying service; presigned URLs
// are short-lived and never cached.
func (s *cachedVideoService) GetMediaDownloadURL(ctx context.Context, id model.VideoID, mediaType string) (string, error) {
	return s.delegate.GetMediaDownloadURL(ctx, id, mediaType)
}

// getVideoWithCache implements the cache-aside pattern.
func (s *cachedVideoService) getVideoWithCache(ctx context.Context, id model.VideoID) (*model.Video, error) {
	video, err := s.cache.Get(ctx, id)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("cache get failed, falling back to database",
			"video_id", id,
			"error", err,
		)
	}
	if video != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
		return video, nil
	}
	if err == nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
	}

	video, err = s.delegate.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, video, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("failed to cache video",
			"video_id", id,
			"error", err,
		)
	} else {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	}

	return video, nil
}

// invalidate removes the cached entry. Failures are logged, not propagated:
// the entry expires on its TTL anyway.
func (s *cachedVideoService) invalidate(ctx context.Context, id model.VideoID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		slog.Warn("failed to invalidate cached video",
			"video_id", id,
			"error", err,
		)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
}
