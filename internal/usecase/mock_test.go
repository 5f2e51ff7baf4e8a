package usecase

import (
	"context"
	"io"
	"time"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// mockRepository provides a configurable mock for the generic repository
// contract. Unset functions return zero values.
type mockRepository[E any, ID comparable, F any] struct {
	insertFn     func(ctx context.Context, entity E) error
	bulkInsertFn func(ctx context.Context, entities []E) error
	updateFn     func(ctx context.Context, entity E) error
	deleteFn     func(ctx context.Context, id ID) error
	findByIDFn   func(ctx context.Context, id ID) (E, error)
	findByIDsFn  func(ctx context.Context, ids []ID) ([]E, error)
	existsByIDFn func(ctx context.Context, ids []ID) (repository.ExistsResult[ID], error)
	findAllFn    func(ctx context.Context) ([]E, error)
	searchFn     func(ctx context.Context, params repository.SearchParams[F]) (repository.SearchResult[E], error)
}

func (m *mockRepository[E, ID, F]) Insert(ctx context.Context, entity E) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, entity)
	}
	return nil
}

func (m *mockRepository[E, ID, F]) BulkInsert(ctx context.Context, entities []E) error {
	if m.bulkInsertFn != nil {
		return m.bulkInsertFn(ctx, entities)
	}
	return nil
}

func (m *mockRepository[E, ID, F]) Update(ctx context.Context, entity E) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, entity)
	}
	return nil
}

func (m *mockRepository[E, ID, F]) Delete(ctx context.Context, id ID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRepository[E, ID, F]) FindByID(ctx context.Context, id ID) (E, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	var zero E
	return zero, nil
}

func (m *mockRepository[E, ID, F]) FindByIDs(ctx context.Context, ids []ID) ([]E, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockRepository[E, ID, F]) ExistsByID(ctx context.Context, ids []ID) (repository.ExistsResult[ID], error) {
	if m.existsByIDFn != nil {
		return m.existsByIDFn(ctx, ids)
	}
	return repository.ExistsResult[ID]{Existent: ids}, nil
}

func (m *mockRepository[E, ID, F]) FindAll(ctx context.Context) ([]E, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return nil, nil
}

func (m *mockRepository[E, ID, F]) Search(ctx context.Context, params repository.SearchParams[F]) (repository.SearchResult[E], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, params)
	}
	return repository.SearchResult[E]{}, nil
}

type mockVideoRepository = mockRepository[*model.Video, model.VideoID, repository.VideoSearchFilter]

type mockCategoryRepository = mockRepository[*model.Category, model.CategoryID, repository.TermFilter]

type mockGenreRepository = mockRepository[*model.Genre, model.GenreID, repository.TermFilter]

type mockCastMemberRepository = mockRepository[*model.CastMember, model.CastMemberID, repository.TermFilter]

// mockUnitOfWork runs the work function directly and collects aggregate
// roots like the real implementation does after a commit.
type mockUnitOfWork struct {
	roots     []model.AggregateRoot
	startErr  error
	commitErr error
	doCalls   int
}

func (m *mockUnitOfWork) Start(ctx context.Context) error { return m.startErr }

func (m *mockUnitOfWork) Commit(ctx context.Context) error { return m.commitErr }

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	m.roots = nil
	return nil
}

func (m *mockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.doCalls++
	if m.startErr != nil {
		return m.startErr
	}
	if err := fn(ctx); err != nil {
		m.roots = nil
		return err
	}
	return m.commitErr
}

func (m *mockUnitOfWork) AddAggregateRoot(root model.AggregateRoot) {
	m.roots = append(m.roots, root)
}

func (m *mockUnitOfWork) AggregateRoots() []model.AggregateRoot { return m.roots }

// mockEnv bundles a unit of work and repositories behind a factory, keeping
// the instances reachable for assertions.
type mockEnv struct {
	uow         *mockUnitOfWork
	videos      *mockVideoRepository
	categories  *mockCategoryRepository
	genres      *mockGenreRepository
	castMembers *mockCastMemberRepository
}

func newMockEnv() *mockEnv {
	return &mockEnv{
		uow:         &mockUnitOfWork{},
		videos:      &mockVideoRepository{},
		categories:  &mockCategoryRepository{},
		genres:      &mockGenreRepository{},
		castMembers: &mockCastMemberRepository{},
	}
}

func (e *mockEnv) factory() (repository.UnitOfWork, Repositories) {
	return e.uow, Repositories{
		Videos:      e.videos,
		Categories:  e.categories,
		Genres:      e.genres,
		CastMembers: e.castMembers,
	}
}

// mockEventBus records published events.
type mockEventBus struct {
	publishFn func(ctx context.Context, events []repository.CatalogEvent) error
	published []repository.CatalogEvent
}

func (m *mockEventBus) Publish(ctx context.Context, events []repository.CatalogEvent) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, events)
	}
	m.published = append(m.published, events...)
	return nil
}

func (m *mockEventBus) Consume(ctx context.Context, handler func(event repository.CatalogEvent) error) error {
	return nil
}

func (m *mockEventBus) Close() error { return nil }

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn                       func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	generatePresignedDownloadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	deleteFn                       func(ctx context.Context, key string) error
	existsFn                       func(ctx context.Context, key string) (bool, error)

	uploadedKeys []string
	deletedKeys  []string
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, size, contentType)
	}
	m.uploadedKeys = append(m.uploadedKeys, key)
	return nil
}

func (m *mockObjectStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedDownloadURLFn != nil {
		return m.generatePresignedDownloadURLFn(ctx, key, expiry)
	}
	return "http://example.com/download", nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	m.deletedKeys = append(m.deletedKeys, key)
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockVideoCache provides a configurable mock for VideoCache.
type mockVideoCache struct {
	getFn    func(ctx context.Context, id model.VideoID) (*model.Video, error)
	setFn    func(ctx context.Context, video *model.Video, ttl time.Duration) error
	deleteFn func(ctx context.Context, id model.VideoID) error

	setCalls    int
	deleteCalls int
}

func (m *mockVideoCache) Get(ctx context.Context, id model.VideoID) (*model.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVideoCache) Set(ctx context.Context, video *model.Video, ttl time.Duration) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, video, ttl)
	}
	return nil
}

func (m *mockVideoCache) Delete(ctx context.Context, id model.VideoID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
