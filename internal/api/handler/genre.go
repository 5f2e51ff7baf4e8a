package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/usecase"
)

type CreateGenreRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	CategoryIDs []string `json:"categories" validate:"required,min=1,dive,uuid"`
}

type UpdateGenreRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	IsActive    bool     `json:"is_active"`
	CategoryIDs []string `json:"categories" validate:"required,min=1,dive,uuid"`
}

type GenreResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	IsActive   bool     `json:"is_active"`
	Categories []string `json:"categories"`
	CreatedAt  string   `json:"created_at"`
}

// GenreHandler handles genre-related HTTP requests.
type GenreHandler struct {
	svc usecase.GenreService
}

// NewGenreHandler creates a new GenreHandler.
func NewGenreHandler(svc usecase.GenreService) *GenreHandler {
	return &GenreHandler{svc: svc}
}

// Create handles POST /v1/genres
func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	genre, err := h.svc.CreateGenre(r.Context(), usecase.CreateGenreInput{
		Name:        req.Name,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toGenreResponse(genre))
}

// Update handles PUT /v1/genres/{id}
func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseGenreID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_genre_id", "Genre ID must be a valid UUID")
		return
	}

	var req UpdateGenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	genre, err := h.svc.UpdateGenre(r.Context(), usecase.UpdateGenreInput{
		ID:          id,
		Name:        req.Name,
		IsActive:    req.IsActive,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toGenreResponse(genre))
}

// Delete handles DELETE /v1/genres/{id}
func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseGenreID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_genre_id", "Genre ID must be a valid UUID")
		return
	}

	if err := h.svc.DeleteGenre(r.Context(), id); err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /v1/genres/{id}
func (h *GenreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseGenreID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_genre_id", "Genre ID must be a valid UUID")
		return
	}

	genre, err := h.svc.GetGenre(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toGenreResponse(genre))
}

// List handles GET /v1/genres
func (h *GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, sortKey, dir := pageParams(r)

	result, err := h.svc.ListGenres(r.Context(), repository.SearchParams[repository.TermFilter]{
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

	items := make([]GenreResponse, 0, len(result.Items))
	for _, g := range result.Items {
		items = append(items, toGenreResponse(g))
	}
	JSON(w, http.StatusOK, PageResponse[GenreResponse]{
		Items:       items,
		Total:       result.Total,
		CurrentPage: result.CurrentPage,
		PerPage:     result.PerPage,
	})
}

func parseCategoryIDs(raw []string) ([]model.CategoryID, error) {
	ids := make([]model.CategoryID, 0, len(raw))
	for _, s := range raw {
		id, err := model.ParseCategoryID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toGenreResponse(g *model.Genre) GenreResponse {
	categories := make([]string, 0, len(g.CategoryIDs))
	for id := range g.CategoryIDs {
		categories = append(categories, id.String())
	}
	sort.Strings(categories)
	return GenreResponse{
		ID:         g.ID.String(),
		Name:       g.Name,
		IsActive:   g.IsActive,
		Categories: categories,
		CreatedAt:  g.CreatedAt.Format(time.RFC3339),
	}
}
