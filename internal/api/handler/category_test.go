package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/usecase"
)

// Mock CategoryService

type mockCategoryService struct {
	createFn func(ctx context.Context, input usecase.CreateCategoryInput) (*model.Category, error)
	updateFn func(ctx context.Context, input usecase.UpdateCategoryInput) (*model.Category, error)
	deleteFn func(ctx context.Context, id model.CategoryID) error
	getFn    func(ctx context.Context, id model.CategoryID) (*model.Category, error)
	listFn   func(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error)
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, input usecase.CreateCategoryInput) (*model.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCategoryService) UpdateCategory(ctx context.Context, input usecase.UpdateCategoryInput) (*model.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, id model.CategoryID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCategoryService) GetCategory(ctx context.Context, id model.CategoryID) (*model.Category, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCategoryService) ListCategories(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return repository.SearchResult[*model.Category]{}, nil
}

// Mock GenreService

type mockGenreService struct {
	createFn func(ctx context.Context, input usecase.CreateGenreInput) (*model.Genre, error)
}

func (m *mockGenreService) CreateGenre(ctx context.Context, input usecase.CreateGenreInput) (*model.Genre, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockGenreService) UpdateGenre(ctx context.Context, input usecase.UpdateGenreInput) (*model.Genre, error) {
	return nil, nil
}

func (m *mockGenreService) DeleteGenre(ctx context.Context, id model.GenreID) error {
	return nil
}

func (m *mockGenreService) GetGenre(ctx context.Context, id model.GenreID) (*model.Genre, error) {
	return nil, nil
}

func (m *mockGenreService) ListGenres(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Genre], error) {
	return repository.SearchResult[*model.Genre]{}, nil
}

// Mock CastMemberService

type mockCastMemberService struct {
	createFn func(ctx context.Context, input usecase.CreateCastMemberInput) (*model.CastMember, error)
}

func (m *mockCastMemberService) CreateCastMember(ctx context.Context, input usecase.CreateCastMemberInput) (*model.CastMember, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCastMemberService) UpdateCastMember(ctx context.Context, input usecase.UpdateCastMemberInput) (*model.CastMember, error) {
	return nil, nil
}

func (m *mockCastMemberService) DeleteCastMember(ctx context.Context, id model.CastMemberID) error {
	return nil
}

func (m *mockCastMemberService) GetCastMember(ctx context.Context, id model.CastMemberID) (*model.CastMember, error) {
	return nil, nil
}

func (m *mockCastMemberService) ListCastMembers(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.CastMember], error) {
	return repository.SearchResult[*model.CastMember]{}, nil
}

func categoryRouter(svc usecase.CategoryService) http.Handler {
	h := NewCategoryHandler(svc)
	r := chi.NewRouter()
	r.Route("/v1/categories", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestCategoryHandler_Create(t *testing.T) {
	category := model.NewCategory("Documentaries", "Non-fiction titles")

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(m *mockCategoryService)
		wantStatusCode int
	}{
		{
			name:        "successful creation",
			requestBody: CreateCategoryRequest{Name: category.Name, Description: category.Description},
			setupMock: func(m *mockCategoryService) {
				m.createFn = func(ctx context.Context, input usecase.CreateCategoryInput) (*model.Category, error) {
					if input.Name != category.Name {
						t.Errorf("input.Name = %q, want %q", input.Name, category.Name)
					}
					return category, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing name rejected before the service",
			requestBody:    CreateCategoryRequest{Description: "no name"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "domain validation failure maps to 422",
			requestBody: CreateCategoryRequest{Name: "x"},
			setupMock: func(m *mockCategoryService) {
				m.createFn = func(ctx context.Context, input usecase.CreateCategoryInput) (*model.Category, error) {
					return nil, &model.EntityValidationError{Fields: map[string][]string{
						"name": {"name is too short"},
					}}
				}
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockCategoryService{}
			if tt.setupMock != nil {
				tt.setupMock(mockSvc)
			}

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/v1/categories", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			categoryRouter(mockSvc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status code = %d, want %d; body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}

func TestCategoryHandler_List(t *testing.T) {
	category := model.NewCategory("Movies", "Feature films")

	mockSvc := &mockCategoryService{
		listFn: func(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error) {
			if params.Filter.Terms != "mov" {
				t.Errorf("params.Filter.Terms = %q, want %q", params.Filter.Terms, "mov")
			}
			if params.SortDir != repository.SortDesc {
				t.Errorf("params.SortDir = %q, want %q", params.SortDir, repository.SortDesc)
			}
			return repository.SearchResult[*model.Category]{
				Items:       []*model.Category{category},
				Total:       1,
				CurrentPage: 1,
				PerPage:     15,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/categories?search=mov&sort=name&dir=desc", nil)
	rec := httptest.NewRecorder()
	categoryRouter(mockSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp PageResponse[CategoryResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != category.Name {
		t.Errorf("items = %+v, want the fixture category", resp.Items)
	}
}

func TestCategoryHandler_Get_NotFound(t *testing.T) {
	id := model.NewCategoryID()
	mockSvc := &mockCategoryService{
		getFn: func(ctx context.Context, got model.CategoryID) (*model.Category, error) {
			return nil, model.NewNotFoundError("category", got.String())
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/categories/"+id.String(), nil)
	rec := httptest.NewRecorder()
	categoryRouter(mockSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGenreHandler_Create(t *testing.T) {
	categoryID := model.NewCategoryID()
	genre := model.NewGenre("Drama", []model.CategoryID{categoryID})

	h := NewGenreHandler(&mockGenreService{
		createFn: func(ctx context.Context, input usecase.CreateGenreInput) (*model.Genre, error) {
			if len(input.CategoryIDs) != 1 || input.CategoryIDs[0] != categoryID {
				t.Errorf("input.CategoryIDs = %v, want [%v]", input.CategoryIDs, categoryID)
			}
			return genre, nil
		},
	})
	r := chi.NewRouter()
	r.Post("/v1/genres", h.Create)

	body, _ := json.Marshal(CreateGenreRequest{
		Name:        "Drama",
		CategoryIDs: []string{categoryID.String()},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/genres", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp GenreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Categories) != 1 || resp.Categories[0] != categoryID.String() {
		t.Errorf("resp.Categories = %v, want [%s]", resp.Categories, categoryID)
	}
}

func TestGenreHandler_Create_RequiresCategories(t *testing.T) {
	h := NewGenreHandler(&mockGenreService{
		createFn: func(ctx context.Context, input usecase.CreateGenreInput) (*model.Genre, error) {
			t.Error("CreateGenre should not be called")
			return nil, nil
		},
	})
	r := chi.NewRouter()
	r.Post("/v1/genres", h.Create)

	body, _ := json.Marshal(CreateGenreRequest{Name: "Drama"})
	req := httptest.NewRequest(http.MethodPost, "/v1/genres", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCastMemberHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           CastMemberRequest
		wantStatusCode int
	}{
		{
			name:           "director",
			body:           CastMemberRequest{Name: "Denis", Type: int(model.CastMemberDirector)},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "actor",
			body:           CastMemberRequest{Name: "Ana", Type: int(model.CastMemberActor)},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "unknown type rejected by validation",
			body:           CastMemberRequest{Name: "Someone", Type: 9},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCastMemberHandler(&mockCastMemberService{
				createFn: func(ctx context.Context, input usecase.CreateCastMemberInput) (*model.CastMember, error) {
					return model.NewCastMember(input.Name, input.Type), nil
				},
			})
			r := chi.NewRouter()
			r.Post("/v1/cast-members", h.Create)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/v1/cast-members", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status code = %d, want %d; body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}
