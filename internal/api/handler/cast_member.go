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

type CastMemberRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Type int    `json:"type" validate:"required,oneof=1 2"`
}

type CastMemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      int    `json:"type"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// CastMemberHandler handles cast-member-related HTTP requests.
type CastMemberHandler struct {
	svc usecase.CastMemberService
}

// NewCastMemberHandler creates a new CastMemberHandler.
func NewCastMemberHandler(svc usecase.CastMemberService) *CastMemberHandler {
	return &CastMemberHandler{svc: svc}
}

// Create handles POST /v1/cast-members
func (h *CastMemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CastMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	member, err := h.svc.CreateCastMember(r.Context(), usecase.CreateCastMemberInput{
		Name: req.Name,
		Type: model.CastMemberType(req.Type),
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toCastMemberResponse(member))
}

// Update handles PUT /v1/cast-members/{id}
func (h *CastMemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCastMemberID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_cast_member_id", "Cast member ID must be a valid UUID")
		return
	}

	var req CastMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	member, err := h.svc.UpdateCastMember(r.Context(), usecase.UpdateCastMemberInput{
		ID:   id,
		Name: req.Name,
		Type: model.CastMemberType(req.Type),
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toCastMemberResponse(member))
}

// Delete handles DELETE /v1/cast-members/{id}
func (h *CastMemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCastMemberID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_cast_member_id", "Cast member ID must be a valid UUID")
		return
	}

	if err := h.svc.DeleteCastMember(r.Context(), id); err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /v1/cast-members/{id}
func (h *CastMemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseCastMemberID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_cast_member_id", "Cast member ID must be a valid UUID")
		return
	}

	member, err := h.svc.GetCastMember(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toCastMemberResponse(member))
}

// List handles GET /v1/cast-members
func (h *CastMemberHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, sortKey, dir := pageParams(r)

	result, err := h.svc.ListCastMembers(r.Context(), repository.SearchParams[repository.TermFilter]{
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

	items := make([]CastMemberResponse, 0, len(result.Items))
	for _, m := range result.Items {
		items = append(items, toCastMemberResponse(m))
	}
	JSON(w, http.StatusOK, PageResponse[CastMemberResponse]{
		Items:       items,
		Total:       result.Total,
		CurrentPage: result.CurrentPage,
		PerPage:     result.PerPage,
	})
}

func toCastMemberResponse(m *model.CastMember) CastMemberResponse {
	return CastMemberResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Type:      int(m.Type),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
