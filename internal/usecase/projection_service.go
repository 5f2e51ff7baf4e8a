package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/infrastructure/metrics"
)

// VideoProjectionService keeps the search projection in sync with the source
// of truth. Video events rebuild the single document from the relational
// backend; category, genre and cast member events reindex every video that
// embeds the changed entity.
type VideoProjectionService interface {
	// HandleEvent processes one catalog event. Returns nil on success or on
	// a permanently unprocessable event; an error means the message should
	// be redelivered.
	HandleEvent(ctx context.Context, event repository.CatalogEvent) error
}

type videoProjectionService struct {
	factory UnitOfWorkFactory
	search  repository.VideoRepository
}

// NewVideoProjectionService creates a new VideoProjectionService instance.
func NewVideoProjectionService(factory UnitOfWorkFactory, search repository.VideoRepository) VideoProjectionService {
	return &videoProjectionService{factory: factory, search: search}
}

// reindexBatchSize bounds how many videos one relation event reloads per
// round trip while rebuilding their documents.
const reindexBatchSize = 100

// HandleEvent routes one catalog event to the matching refresh path. The
// event only names the entity; documents are always rebuilt from the
// relational state, so replayed or reordered events converge on the same
// result.
func (s *videoProjectionService) HandleEvent(ctx context.Context, event repository.CatalogEvent) error {
	switch event.EntityType {
	case repository.EntityVideo:
		return s.refreshVideo(ctx, event)
	case repository.EntityCategory, repository.EntityGenre, repository.EntityCastMember:
		return s.reindexEmbeddingVideos(ctx, event)
	default:
		slog.Warn("discarding event with unknown entity type",
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
		)
		return nil
	}
}

// refreshVideo rebuilds the document for a single video. Soft-deleted videos
// stay in the index with their deleted_at set; queries exclude them through
// the live-only scope.
func (s *videoProjectionService) refreshVideo(ctx context.Context, event repository.CatalogEvent) error {
	id, err := model.ParseVideoID(event.EntityID)
	if err != nil {
		slog.Error("discarding event with unparseable entity id",
			"entity_id", event.EntityID,
			"operation", event.Operation,
			"error", err,
		)
		return nil
	}

	_, repos := s.factory()
	videos, err := repos.Videos.FindByIDs(ctx, []model.VideoID{id})
	if err != nil {
		return fmt.Errorf("load video: %w", err)
	}
	if len(videos) == 0 {
		return s.removeDocument(ctx, id)
	}

	if err := s.search.Insert(ctx, videos[0]); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpIndex, metrics.SearchStatusError).Inc()
		return fmt.Errorf("index video: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpIndex, metrics.SearchStatusSuccess).Inc()
	return nil
}

// reindexEmbeddingVideos rebuilds every video document embedding the changed
// relation entity. Nested snapshots are hydrated from the live category,
// genre and cast member tables, so a rename or soft delete there changes the
// content of each embedding video's document.
func (s *videoProjectionService) reindexEmbeddingVideos(ctx context.Context, event repository.CatalogEvent) error {
	filter, err := relationFilter(event)
	if err != nil {
		slog.Error("discarding event with unparseable entity id",
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"operation", event.Operation,
			"error", err,
		)
		return nil
	}

	_, repos := s.factory()
	for page := 1; ; page++ {
		result, err := repos.Videos.Search(ctx, repository.SearchParams[repository.VideoSearchFilter]{
			Page:    page,
			PerPage: reindexBatchSize,
			Filter:  filter,
		})
		if err != nil {
			return fmt.Errorf("load videos embedding %s %s: %w", event.EntityType, event.EntityID, err)
		}
		for _, video := range result.Items {
			if err := s.search.Insert(ctx, video); err != nil {
				metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpIndex, metrics.SearchStatusError).Inc()
				return fmt.Errorf("index video %s: %w", video.ID, err)
			}
			metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpIndex, metrics.SearchStatusSuccess).Inc()
		}
		if len(result.Items) < reindexBatchSize {
			return nil
		}
	}
}

// relationFilter translates a relation event into the video search filter
// matching every video that embeds the entity.
func relationFilter(event repository.CatalogEvent) (repository.VideoSearchFilter, error) {
	var filter repository.VideoSearchFilter
	switch event.EntityType {
	case repository.EntityCategory:
		id, err := model.ParseCategoryID(event.EntityID)
		if err != nil {
			return filter, err
		}
		filter.CategoryIDs = []model.CategoryID{id}
	case repository.EntityGenre:
		id, err := model.ParseGenreID(event.EntityID)
		if err != nil {
			return filter, err
		}
		filter.GenreIDs = []model.GenreID{id}
	case repository.EntityCastMember:
		id, err := model.ParseCastMemberID(event.EntityID)
		if err != nil {
			return filter, err
		}
		filter.CastMemberIDs = []model.CastMemberID{id}
	}
	return filter, nil
}

func (s *videoProjectionService) removeDocument(ctx context.Context, id model.VideoID) error {
	err := s.search.Delete(ctx, id)
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpDelete, metrics.SearchStatusError).Inc()
		return fmt.Errorf("delete video document: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOpDelete, metrics.SearchStatusSuccess).Inc()
	return nil
}
