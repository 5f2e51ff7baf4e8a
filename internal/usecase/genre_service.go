package usecase

import (
	"context"
	"fmt"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// CreateGenreInput contains the input parameters for creating a genre.
type CreateGenreInput struct {
	Name        string
	CategoryIDs []model.CategoryID
}

// UpdateGenreInput contains the input parameters for updating a genre. The
// category id list replaces the existing set.
type UpdateGenreInput struct {
	ID          model.GenreID
	Name        string
	IsActive    bool
	CategoryIDs []model.CategoryID
}

// GenreService defines the interface for genre business logic operations.
type GenreService interface {
	CreateGenre(ctx context.Context, input CreateGenreInput) (*model.Genre, error)
	UpdateGenre(ctx context.Context, input UpdateGenreInput) (*model.Genre, error)
	DeleteGenre(ctx context.Context, id model.GenreID) error
	GetGenre(ctx context.Context, id model.GenreID) (*model.Genre, error)
	ListGenres(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Genre], error)
}

type genreService struct {
	factory UnitOfWorkFactory
	bus     repository.EventBus
}

// NewGenreService creates a new GenreService instance.
func NewGenreService(factory UnitOfWorkFactory, bus repository.EventBus) GenreService {
	return &genreService{factory: factory, bus: bus}
}

func (s *genreService) CreateGenre(ctx context.Context, input CreateGenreInput) (*model.Genre, error) {
	uow, repos := s.factory()

	if err := checkCategoryIDs(ctx, repos, input.CategoryIDs); err != nil {
		return nil, err
	}

	genre := model.NewGenre(input.Name, input.CategoryIDs)
	if n := genre.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.Genres.Insert(ctx, genre)
	})
	if err != nil {
		return nil, fmt.Errorf("create genre: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityGenre, genre.EntityID(), repository.OpCreated)
	return genre, nil
}

func (s *genreService) UpdateGenre(ctx context.Context, input UpdateGenreInput) (*model.Genre, error) {
	uow, repos := s.factory()

	genre, err := repos.Genres.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("find genre: %w", err)
	}
	if genre == nil {
		return nil, model.NewNotFoundError("genre", input.ID.String())
	}

	if err := checkCategoryIDs(ctx, repos, input.CategoryIDs); err != nil {
		return nil, err
	}

	genre.ChangeName(input.Name)
	if input.IsActive {
		genre.Activate()
	} else {
		genre.Deactivate()
	}
	if err := genre.SyncCategoryIDs(input.CategoryIDs); err != nil {
		return nil, err
	}
	if n := genre.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Genres.Update(ctx, genre)
	})
	if err != nil {
		return nil, fmt.Errorf("update genre: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityGenre, genre.EntityID(), repository.OpUpdated)
	return genre, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, id model.GenreID) error {
	uow, repos := s.factory()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.Genres.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityGenre, id.String(), repository.OpDeleted)
	return nil
}

func (s *genreService) GetGenre(ctx context.Context, id model.GenreID) (*model.Genre, error) {
	_, repos := s.factory()

	genre, err := repos.Genres.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find genre: %w", err)
	}
	if genre == nil {
		return nil, model.NewNotFoundError("genre", id.String())
	}
	return genre, nil
}

func (s *genreService) ListGenres(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Genre], error) {
	_, repos := s.factory()
	return repos.Genres.Search(ctx, params)
}

// checkCategoryIDs verifies every referenced category exists. An empty list
// is left to the aggregate's own validation.
func checkCategoryIDs(ctx context.Context, repos Repositories, ids []model.CategoryID) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := repos.Categories.ExistsByID(ctx, ids)
	if err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	if len(result.NonExistent) > 0 {
		return model.NewNotFoundError("category", idStrings(result.NonExistent)...)
	}
	return nil
}
