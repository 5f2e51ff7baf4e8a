package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/usecase"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
	IsActive    bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	svc usecase.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc usecase.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create handles POST /v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), usecase.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update handles PUT /v1/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_category_id", "Category ID must be a valid UUID")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	category, err := h.svc.UpdateCategory(r.Context(), usecase.UpdateCategoryInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete handles DELETE /v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_category_id", "Category ID must be a valid UUID")
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /v1/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_category_id", "Category ID must be a valid UUID")
		return
	}

	category, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toCategoryResponse(category))
}

// List handles GET /v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, sortKey, dir := pageParams(r)

	result, err := h.svc.ListCategories(r.Context(), repository.SearchParams[repository.TermFilter]{
		Page:    page,
		PerPage: perPage,
		Sort:    sortKey,
		SortDir: dir,
		Filter:  repository.TermFilter{Terms: r.URL.Query().Get("search")},
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	items := make([]CategoryResponse, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, toCategoryResponse(c))
	}
	JSON(w, http.StatusOK, PageResponse[CategoryResponse]{
		Items:       items,
		Total:       result.Total,
		CurrentPage: result.CurrentPage,
		PerPage:     result.PerPage,
	})
}

func toCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}
