package usecase

import (
	"context"
	"fmt"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// CreateCastMemberInput contains the input parameters for creating a cast
// member.
type CreateCastMemberInput struct {
	Name string
	Type model.CastMemberType
}

// UpdateCastMemberInput contains the input parameters for updating a cast
// member.
type UpdateCastMemberInput struct {
	ID   model.CastMemberID
	Name string
	Type model.CastMemberType
}

// CastMemberService defines the interface for cast member business logic
// operations.
type CastMemberService interface {
	CreateCastMember(ctx context.Context, input CreateCastMemberInput) (*model.CastMember, error)
	UpdateCastMember(ctx context.Context, input UpdateCastMemberInput) (*model.CastMember, error)
	DeleteCastMember(ctx context.Context, id model.CastMemberID) error
	GetCastMember(ctx context.Context, id model.CastMemberID) (*model.CastMember, error)
	ListCastMembers(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.CastMember], error)
}

type castMemberService struct {
	factory UnitOfWorkFactory
	bus     repository.EventBus
}

// NewCastMemberService creates a new CastMemberService instance.
func NewCastMemberService(factory UnitOfWorkFactory, bus repository.EventBus) CastMemberService {
	return &castMemberService{factory: factory, bus: bus}
}

func (s *castMemberService) CreateCastMember(ctx context.Context, input CreateCastMemberInput) (*model.CastMember, error) {
	uow, repos := s.factory()

	member := model.NewCastMember(input.Name, input.Type)
	if n := member.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.CastMembers.Insert(ctx, member)
	})
	if err != nil {
		return nil, fmt.Errorf("create cast member: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCastMember, member.EntityID(), repository.OpCreated)
	return member, nil
}

func (s *castMemberService) UpdateCastMember(ctx context.Context, input UpdateCastMemberInput) (*model.CastMember, error) {
	uow, repos := s.factory()

	member, err := repos.CastMembers.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("find cast member: %w", err)
	}
	if member == nil {
		return nil, model.NewNotFoundError("cast member", input.ID.String())
	}

	member.ChangeName(input.Name)
	member.ChangeType(input.Type)
	if n := member.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.CastMembers.Update(ctx, member)
	})
	if err != nil {
		return nil, fmt.Errorf("update cast member: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCastMember, member.EntityID(), repository.OpUpdated)
	return member, nil
}

func (s *castMemberService) DeleteCastMember(ctx context.Context, id model.CastMemberID) error {
	uow, repos := s.factory()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.CastMembers.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityCastMember, id.String(), repository.OpDeleted)
	return nil
}

func (s *castMemberService) GetCastMember(ctx context.Context, id model.CastMemberID) (*model.CastMember, error) {
	_, repos := s.factory()

	member, err := repos.CastMembers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find cast member: %w", err)
	}
	if member == nil {
		return nil, model.NewNotFoundError("cast member", id.String())
	}
	return member, nil
}

func (s *castMemberService) ListCastMembers(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.CastMember], error) {
	_, repos := s.factory()
	return repos.CastMembers.Search(ctx, params)
}
