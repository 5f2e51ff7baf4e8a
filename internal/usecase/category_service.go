package usecase

import (
	"context"
	"fmt"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// CreateCategoryInput contains the input parameters for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput contains the input parameters for updating a category.
type UpdateCategoryInput struct {
	ID          model.CategoryID
	Name        string
	Description string
	IsActive    bool
}

// CategoryService defines the interface for category business logic
// operations.
type CategoryService interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id model.CategoryID) error
	GetCategory(ctx context.Context, id model.CategoryID) (*model.Category, error)
	ListCategories(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error)
}

type categoryService struct {
	factory UnitOfWorkFactory
	bus     repository.EventBus
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(factory UnitOfWorkFactory, bus repository.EventBus) CategoryService {
	return &categoryService{factory: factory, bus: bus}
}

func (s *categoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*model.Category, error) {
	uow, repos := s.factory()

	category := model.NewCategory(input.Name, input.Description)
	if n := category.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.Categories.Insert(ctx, category)
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCategory, category.EntityID(), repository.OpCreated)
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*model.Category, error) {
	uow, repos := s.factory()

	category, err := repos.Categories.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFoundError("category", input.ID.String())
	}

	category.ChangeName(input.Name)
	category.ChangeDescription(input.Description)
	if input.IsActive {
		category.Activate()
	} else {
		category.Deactivate()
	}
	if n := category.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Categories.Update(ctx, category)
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCategory, category.EntityID(), repository.OpUpdated)
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id model.CategoryID) error {
	uow, repos := s.factory()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.Categories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCategory, id.String(), repository.OpDeleted)
	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, id model.CategoryID) (*model.Category, error) {
	_, repos := s.factory()

	category, err := repos.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFoundError("category", id.String())
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error) {
	_, repos := s.factory()
	return repos.Categories.Search(ctx, params)
}
