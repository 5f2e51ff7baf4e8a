package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateCategoryInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "success",
			input: CreateCategoryInput{Name: "Movies", Description: "Feature films"},
		},
		{
			name:      "empty name",
			input:     CreateCategoryInput{Name: ""},
			wantErr:   true,
			wantField: "name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv()
			bus := &mockEventBus{}
			service := NewCategoryService(env.factory, bus)

			category, err := service.CreateCategory(context.Background(), tt.input)
			if tt.wantErr {
				var validationErr *model.EntityValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected EntityValidationError, got %v", err)
				}
				if _, ok := validationErr.Fields[tt.wantField]; !ok {
					t.Errorf("missing %q in %v", tt.wantField, validationErr.Fields)
				}
				if len(bus.published) != 0 {
					t.Error("events published despite validation failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateCategory failed: %v", err)
			}
			if category.Name != tt.input.Name || !category.IsActive {
				t.Errorf("category = %+v", category)
			}
			if len(bus.published) != 1 || bus.published[0].Operation != repository.OpCreated {
				t.Fatalf("published = %+v, want one created event", bus.published)
			}
			if bus.published[0].EntityType != repository.EntityCategory {
				t.Errorf("entity type = %s, want category", bus.published[0].EntityType)
			}
		})
	}
}

func TestCategoryService_UpdateCategory_Deactivates(t *testing.T) {
	env := newMockEnv()
	bus := &mockEventBus{}
	service := NewCategoryService(env.factory, bus)

	existing := model.NewCategory("Movies", "Feature films")
	env.categories.findByIDFn = func(ctx context.Context, id model.CategoryID) (*model.Category, error) {
		return existing, nil
	}

	category, err := service.UpdateCategory(context.Background(), UpdateCategoryInput{
		ID:          existing.ID,
		Name:        "Films",
		Description: "Renamed",
		IsActive:    false,
	})
	if err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	if category.Name != "Films" || category.IsActive {
		t.Errorf("category = %+v, want renamed and inactive", category)
	}
	if len(bus.published) != 1 || bus.published[0].Operation != repository.OpUpdated {
		t.Fatalf("published = %+v, want one updated event", bus.published)
	}
}

func TestCategoryService_UpdateCategory_NotFound(t *testing.T) {
	env := newMockEnv()
	service := NewCategoryService(env.factory, &mockEventBus{})

	_, err := service.UpdateCategory(context.Background(), UpdateCategoryInput{ID: model.NewCategoryID(), Name: "x"})

	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCategoryService_DeleteCategory_PublishesDeleted(t *testing.T) {
	env := newMockEnv()
	bus := &mockEventBus{}
	service := NewCategoryService(env.factory, bus)

	id := model.NewCategoryID()
	if err := service.DeleteCategory(context.Background(), id); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if len(bus.published) != 1 || bus.published[0].Operation != repository.OpDeleted {
		t.Fatalf("published = %+v, want one deleted event", bus.published)
	}
	if bus.published[0].EntityID != id.String() {
		t.Errorf("entity id = %s, want %s", bus.published[0].EntityID, id)
	}
}

func TestGenreService_CreateGenre(t *testing.T) {
	env := newMockEnv()
	bus := &mockEventBus{}
	service := NewGenreService(env.factory, bus)

	categoryID := model.NewCategoryID()
	genre, err := service.CreateGenre(context.Background(), CreateGenreInput{
		Name:        "Drama",
		CategoryIDs: []model.CategoryID{categoryID},
	})
	if err != nil {
		t.Fatalf("CreateGenre failed: %v", err)
	}
	if _, ok := genre.CategoryIDs[categoryID]; !ok {
		t.Error("category id missing from genre")
	}
	if len(bus.published) != 1 || bus.published[0].EntityType != repository.EntityGenre {
		t.Fatalf("published = %+v, want one genre event", bus.published)
	}
}

func TestGenreService_CreateGenre_UnknownCategory(t *testing.T) {
	env := newMockEnv()
	missing := model.NewCategoryID()
	env.categories.existsByIDFn = func(ctx context.Context, ids []model.CategoryID) (repository.ExistsResult[model.CategoryID], error) {
		return repository.ExistsResult[model.CategoryID]{NonExistent: []model.CategoryID{missing}}, nil
	}
	service := NewGenreService(env.factory, &mockEventBus{})

	_, err := service.CreateGenre(context.Background(), CreateGenreInput{
		Name:        "Drama",
		CategoryIDs: []model.CategoryID{missing},
	})

	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Entity != "category" {
		t.Errorf("entity = %q, want category", notFound.Entity)
	}
}

func TestGenreService_CreateGenre_RequiresCategories(t *testing.T) {
	env := newMockEnv()
	service := NewGenreService(env.factory, &mockEventBus{})

	_, err := service.CreateGenre(context.Background(), CreateGenreInput{Name: "Drama"})

	var validationErr *model.EntityValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected EntityValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["categories"]; !ok {
		t.Errorf("missing categories in %v", validationErr.Fields)
	}
}

func TestGenreService_UpdateGenre_SyncsCategories(t *testing.T) {
	env := newMockEnv()
	bus := &mockEventBus{}
	service := NewGenreService(env.factory, bus)

	oldCategory := model.NewCategoryID()
	newCategory := model.NewCategoryID()
	existing := model.NewGenre("Drama", []model.CategoryID{oldCategory})
	env.genres.findByIDFn = func(ctx context.Context, id model.GenreID) (*model.Genre, error) {
		return existing, nil
	}

	genre, err := service.UpdateGenre(context.Background(), UpdateGenreInput{
		ID:          existing.ID,
		Name:        "Melodrama",
		IsActive:    true,
		CategoryIDs: []model.CategoryID{newCategory},
	})
	if err != nil {
		t.Fatalf("UpdateGenre failed: %v", err)
	}
	if _, ok := genre.CategoryIDs[oldCategory]; ok {
		t.Error("stale category id survived the sync")
	}
	if _, ok := genre.CategoryIDs[newCategory]; !ok {
		t.Error("new category id missing after sync")
	}
}

func TestCastMemberService_CreateCastMember(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateCastMemberInput
		wantErr bool
	}{
		{
			name:  "director",
			input: CreateCastMemberInput{Name: "Greta", Type: model.CastMemberDirector},
		},
		{
			name:  "actor",
			input: CreateCastMemberInput{Name: "Ada", Type: model.CastMemberActor},
		},
		{
			name:    "invalid type",
			input:   CreateCastMemberInput{Name: "Nobody", Type: model.CastMemberType(9)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMockEnv()
			bus := &mockEventBus{}
			service := NewCastMemberService(env.factory, bus)

			member, err := service.CreateCastMember(context.Background(), tt.input)
			if tt.wantErr {
				var validationErr *model.EntityValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected EntityValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCastMember failed: %v", err)
			}
			if member.Type != tt.input.Type {
				t.Errorf("type = %v, want %v", member.Type, tt.input.Type)
			}
			if len(bus.published) != 1 || bus.published[0].EntityType != repository.EntityCastMember {
				t.Fatalf("published = %+v, want one cast member event", bus.published)
			}
		})
	}
}

func TestCastMemberService_GetCastMember_NotFound(t *testing.T) {
	env := newMockEnv()
	service := NewCastMemberService(env.factory, &mockEventBus{})

	_, err := service.GetCastMember(context.Background(), model.NewCastMemberID())

	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListOperationsDelegateToSearch(t *testing.T) {
	env := newMockEnv()
	env.categories.searchFn = func(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error) {
		if params.Filter.Terms != "mov" {
			t.Errorf("term = %q, want mov", params.Filter.Terms)
		}
		return repository.SearchResult[*model.Category]{Total: 3, CurrentPage: 1, PerPage: 15}, nil
	}
	service := NewCategoryService(env.factory, &mockEventBus{})

	result, err := service.ListCategories(context.Background(), repository.SearchParams[repository.TermFilter]{
		Filter: repository.TermFilter{Terms: "mov"},
	})
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
}
