package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

func projectionEvent(entityType, entityID, operation string) repository.CatalogEvent {
	return repository.CatalogEvent{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		OccurredAt: time.Now().UTC(),
	}
}

func TestVideoProjectionService_IndexesLoadedVideo(t *testing.T) {
	env := newMockEnv()
	video := model.NewVideo(model.VideoProps{
		Title:  "Projected",
		Rating: model.RatingFree,
		Categories: []model.NestedCategory{
			{ID: model.NewCategoryID(), Name: "Movies", IsActive: true},
		},
		Genres: []model.NestedGenre{
			{ID: model.NewGenreID(), Name: "Drama", IsActive: true},
		},
		CastMembers: []model.NestedCastMember{
			{ID: model.NewCastMemberID(), Name: "Ada", Type: model.CastMemberActor, IsActive: true},
		},
	})
	env.videos.findByIDsFn = func(ctx context.Context, ids []model.VideoID) ([]*model.Video, error) {
		if len(ids) != 1 || ids[0] != video.ID {
			t.Errorf("loaded ids = %v, want [%s]", ids, video.ID)
		}
		return []*model.Video{video}, nil
	}

	var indexed *model.Video
	search := &mockVideoRepository{
		insertFn: func(ctx context.Context, v *model.Video) error {
			indexed = v
			return nil
		},
	}

	service := NewVideoProjectionService(env.factory, search)

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityVideo, video.ID.String(), repository.OpUpdated))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if indexed != video {
		t.Error("loaded video was not indexed")
	}
}

func TestVideoProjectionService_RemovesDocumentWhenRowIsGone(t *testing.T) {
	env := newMockEnv()

	var deleted model.VideoID
	search := &mockVideoRepository{
		deleteFn: func(ctx context.Context, id model.VideoID) error {
			deleted = id
			return nil
		},
	}

	service := NewVideoProjectionService(env.factory, search)

	id := model.NewVideoID()
	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityVideo, id.String(), repository.OpDeleted))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if deleted != id {
		t.Errorf("deleted document id = %s, want %s", deleted, id)
	}
}

func TestVideoProjectionService_ToleratesMissingDocument(t *testing.T) {
	env := newMockEnv()
	search := &mockVideoRepository{
		deleteFn: func(ctx context.Context, id model.VideoID) error {
			return model.NewNotFoundError("video", id.String())
		},
	}

	service := NewVideoProjectionService(env.factory, search)

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityVideo, model.NewVideoID().String(), repository.OpDeleted))
	if err != nil {
		t.Fatalf("missing document must not fail the handler: %v", err)
	}
}

func TestVideoProjectionService_ReindexesVideosEmbeddingRelation(t *testing.T) {
	// Nested snapshots come from the live relation tables, so a rename or
	// soft delete there must rebuild every embedding video's document.
	categoryID := model.NewCategoryID()
	genreID := model.NewGenreID()
	memberID := model.NewCastMemberID()

	tests := []struct {
		name       string
		event      repository.CatalogEvent
		wantFilter func(t *testing.T, f repository.VideoSearchFilter)
	}{
		{
			name:  "category delete",
			event: projectionEvent(repository.EntityCategory, categoryID.String(), repository.OpDeleted),
			wantFilter: func(t *testing.T, f repository.VideoSearchFilter) {
				if len(f.CategoryIDs) != 1 || f.CategoryIDs[0] != categoryID {
					t.Errorf("filter category ids = %v, want [%s]", f.CategoryIDs, categoryID)
				}
			},
		},
		{
			name:  "genre update",
			event: projectionEvent(repository.EntityGenre, genreID.String(), repository.OpUpdated),
			wantFilter: func(t *testing.T, f repository.VideoSearchFilter) {
				if len(f.GenreIDs) != 1 || f.GenreIDs[0] != genreID {
					t.Errorf("filter genre ids = %v, want [%s]", f.GenreIDs, genreID)
				}
			},
		},
		{
			name:  "cast member update",
			event: projectionEvent(repository.EntityCastMember, memberID.String(), repository.OpUpdated),
			wantFilter: func(t *testing.T, f repository.VideoSearchFilter) {
				if len(f.CastMemberIDs) != 1 || f.CastMemberIDs[0] != memberID {
					t.Errorf("filter cast member ids = %v, want [%s]", f.CastMemberIDs, memberID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv()
			embedding := model.NewVideo(model.VideoProps{Title: "Embedding", Rating: model.RatingFree})
			env.videos.searchFn = func(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
				tt.wantFilter(t, params.Filter)
				return repository.SearchResult[*model.Video]{Items: []*model.Video{embedding}, Total: 1}, nil
			}

			indexed := 0
			search := &mockVideoRepository{
				insertFn: func(ctx context.Context, v *model.Video) error {
					if v != embedding {
						t.Errorf("indexed video = %s, want %s", v.ID, embedding.ID)
					}
					indexed++
					return nil
				},
			}

			service := NewVideoProjectionService(env.factory, search)

			if err := service.HandleEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("HandleEvent failed: %v", err)
			}
			if indexed != 1 {
				t.Errorf("indexed %d documents, want 1", indexed)
			}
		})
	}
}

func TestVideoProjectionService_ReindexPagesThroughMatches(t *testing.T) {
	env := newMockEnv()
	fullPage := make([]*model.Video, reindexBatchSize)
	for i := range fullPage {
		fullPage[i] = model.NewVideo(model.VideoProps{Title: "Paged", Rating: model.RatingFree})
	}
	env.videos.searchFn = func(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
		if params.Page == 1 {
			return repository.SearchResult[*model.Video]{Items: fullPage, Total: reindexBatchSize + 1}, nil
		}
		return repository.SearchResult[*model.Video]{
			Items: []*model.Video{model.NewVideo(model.VideoProps{Title: "Last", Rating: model.RatingFree})},
			Total: reindexBatchSize + 1,
		}, nil
	}

	indexed := 0
	search := &mockVideoRepository{
		insertFn: func(ctx context.Context, v *model.Video) error {
			indexed++
			return nil
		},
	}

	service := NewVideoProjectionService(env.factory, search)

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityCategory, model.NewCategoryID().String(), repository.OpUpdated))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if indexed != reindexBatchSize+1 {
		t.Errorf("indexed %d documents, want %d", indexed, reindexBatchSize+1)
	}
}

func TestVideoProjectionService_DiscardsUnparseableRelationID(t *testing.T) {
	env := newMockEnv()
	env.videos.searchFn = func(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
		t.Error("relational search for unparseable relation id")
		return repository.SearchResult[*model.Video]{}, nil
	}

	service := NewVideoProjectionService(env.factory, &mockVideoRepository{})

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityGenre, "not-a-uuid", repository.OpUpdated))
	if err != nil {
		t.Fatalf("unparseable relation id must be discarded, not retried: %v", err)
	}
}

func TestVideoProjectionService_IgnoresUnknownEntityType(t *testing.T) {
	env := newMockEnv()
	service := NewVideoProjectionService(env.factory, &mockVideoRepository{})

	err := service.HandleEvent(context.Background(), projectionEvent("rating", model.NewVideoID().String(), repository.OpUpdated))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
}

func TestVideoProjectionService_DiscardsUnparseableID(t *testing.T) {
	env := newMockEnv()
	service := NewVideoProjectionService(env.factory, &mockVideoRepository{})

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityVideo, "not-a-uuid", repository.OpCreated))
	if err != nil {
		t.Fatalf("unparseable id must be discarded, not retried: %v", err)
	}
}

func TestVideoProjectionService_TransientLoadFailureRetries(t *testing.T) {
	env := newMockEnv()
	env.videos.findByIDsFn = func(ctx context.Context, ids []model.VideoID) ([]*model.Video, error) {
		return nil, errors.New("connection refused")
	}

	service := NewVideoProjectionService(env.factory, &mockVideoRepository{})

	err := service.HandleEvent(context.Background(), projectionEvent(repository.EntityVideo, model.NewVideoID().String(), repository.OpCreated))
	if err == nil {
		t.Fatal("transient failure must propagate for redelivery")
	}
}
