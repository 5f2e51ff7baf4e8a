package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/usecase"
)

// maxUploadMemory bounds the multipart parts held in memory; larger files
// spill to disk.
const maxUploadMemory = 32 << 20

// Request/Response types

type VideoRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Description   string   `json:"description"`
	YearLaunched  int      `json:"year_launched" validate:"required"`
	Duration      int      `json:"duration" validate:"gte=0"`
	Rating        string   `json:"rating" validate:"required"`
	IsOpened      bool     `json:"is_opened"`
	CategoryIDs   []string `json:"categories" validate:"required,min=1,dive,uuid"`
	GenreIDs      []string `json:"genres" validate:"required,min=1,dive,uuid"`
	CastMemberIDs []string `json:"cast_members" validate:"required,min=1,dive,uuid"`
}

type UpdateMediaStatusRequest struct {
	MediaType       string `json:"media_type" validate:"required,oneof=trailer video"`
	Status          string `json:"status" validate:"required,oneof=PROCESSING COMPLETED FAILED"`
	EncodedLocation string `json:"encoded_location"`
}

type ImageMediaResponse struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type AudioVideoMediaResponse struct {
	Name            string `json:"name"`
	RawLocation     string `json:"raw_location"`
	EncodedLocation string `json:"encoded_location,omitempty"`
	Status          string `json:"status"`
}

type NestedEntityResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type NestedCastMemberResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	IsActive bool   `json:"is_active"`
}

type VideoResponse struct {
	ID            string                     `json:"id"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	YearLaunched  int                        `json:"year_launched"`
	Duration      int                        `json:"duration"`
	Rating        string                     `json:"rating"`
	IsOpened      bool                       `json:"is_opened"`
	IsPublished   bool                       `json:"is_published"`
	Banner        *ImageMediaResponse        `json:"banner,omitempty"`
	Thumbnail     *ImageMediaResponse        `json:"thumbnail,omitempty"`
	ThumbnailHalf *ImageMediaResponse        `json:"thumbnail_half,omitempty"`
	Trailer       *AudioVideoMediaResponse   `json:"trailer,omitempty"`
	Video         *AudioVideoMediaResponse   `json:"video,omitempty"`
	Categories    []NestedEntityResponse     `json:"categories"`
	Genres        []NestedEntityResponse     `json:"genres"`
	CastMembers   []NestedCastMemberResponse `json:"cast_members"`
	CreatedAt     string                     `json:"created_at"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	svc usecase.VideoService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(svc usecase.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// Create handles POST /v1/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	input, err := req.toCreateInput()
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	video, err := h.svc.CreateVideo(r.Context(), input)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toVideoResponse(video))
}

// Update handles PUT /v1/videos/{id}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	var req VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	createInput, err := req.toCreateInput()
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	video, err := h.svc.UpdateVideo(r.Context(), usecase.UpdateVideoInput{
		ID:            id,
		Title:         createInput.Title,
		Description:   createInput.Description,
		YearLaunched:  createInput.YearLaunched,
		Duration:      createInput.Duration,
		Rating:        createInput.Rating,
		IsOpened:      createInput.IsOpened,
		CategoryIDs:   createInput.CategoryIDs,
		GenreIDs:      createInput.GenreIDs,
		CastMemberIDs: createInput.CastMemberIDs,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// Delete handles DELETE /v1/videos/{id}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	if err := h.svc.DeleteVideo(r.Context(), id); err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	video, err := h.svc.GetVideo(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// List handles GET /v1/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, sortKey, dir := pageParams(r)
	q := r.URL.Query()

	filter := repository.VideoSearchFilter{Terms: q.Get("search")}
	for _, raw := range q["category_id"] {
		id, err := model.ParseCategoryID(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}
	for _, raw := range q["genre_id"] {
		id, err := model.ParseGenreID(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		filter.GenreIDs = append(filter.GenreIDs, id)
	}
	for _, raw := range q["cast_member_id"] {
		id, err := model.ParseCastMemberID(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		filter.CastMemberIDs = append(filter.CastMemberIDs, id)
	}
	if raw := q.Get("is_published"); raw != "" {
		published := raw == "true"
		filter.IsPublished = &published
	}

	result, err := h.svc.SearchVideos(r.Context(), repository.SearchParams[repository.VideoSearchFilter]{
		Page:    page,
		PerPage: perPage,
		Sort:    sortKey,
		SortDir: dir,
		Filter:  filter,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	items := make([]VideoResponse, 0, len(result.Items))
	for _, v := range result.Items {
		items = append(items, toVideoResponse(v))
	}
	JSON(w, http.StatusOK, PageResponse[VideoResponse]{
		Items:       items,
		Total:       result.Total,
		CurrentPage: result.CurrentPage,
		PerPage:     result.PerPage,
	})
}

// UploadMedias handles POST /v1/videos/{id}/medias
func (h *VideoHandler) UploadMedias(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Request must be multipart/form-data")
		return
	}

	input := usecase.UploadMediasInput{VideoID: id}
	var openErr error
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	loadPart := func(field string) *usecase.MediaFile {
		if openErr != nil {
			return nil
		}
		file, header, err := r.FormFile(field)
		if err != nil {
			if err == http.ErrMissingFile {
				return nil
			}
			openErr = err
			return nil
		}
		opened = append(opened, file)
		return &usecase.MediaFile{
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Reader:   file,
		}
	}

	input.Banner = loadPart("banner")
	input.Thumbnail = loadPart("thumbnail")
	input.ThumbnailHalf = loadPart("thumbnail_half")
	input.Trailer = loadPart("trailer")
	input.Video = loadPart("video")
	if openErr != nil {
		Error(w, http.StatusBadRequest, "invalid_request", openErr.Error())
		return
	}
	if input.Banner == nil && input.Thumbnail == nil && input.ThumbnailHalf == nil &&
		input.Trailer == nil && input.Video == nil {
		Error(w, http.StatusBadRequest, "invalid_request", "At least one media file is required")
		return
	}

	if err := h.svc.UploadMedias(r.Context(), input); err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateMediaStatus handles PUT /v1/videos/{id}/medias/status
func (h *VideoHandler) UpdateMediaStatus(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	var req UpdateMediaStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RequestValidationError(w, err)
		return
	}

	err = h.svc.UpdateMediaStatus(r.Context(), usecase.UpdateMediaStatusInput{
		VideoID:         id,
		MediaType:       model.AudioVideoMediaType(req.MediaType),
		Status:          model.MediaStatus(req.Status),
		EncodedLocation: req.EncodedLocation,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MediaURLResponse carries a presigned link to a stored media object.
type MediaURLResponse struct {
	URL string `json:"url"`
}

// GetMediaURL handles GET /v1/videos/{id}/medias/{type}
func (h *VideoHandler) GetMediaURL(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseVideoID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	url, err := h.svc.GetMediaDownloadURL(r.Context(), id, chi.URLParam(r, "type"))
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, MediaURLResponse{URL: url})
}

func (req VideoRequest) toCreateInput() (usecase.CreateVideoInput, error) {
	input := usecase.CreateVideoInput{
		Title:        req.Title,
		Description:  req.Description,
		YearLaunched: req.YearLaunched,
		Duration:     req.Duration,
		Rating:       model.Rating(req.Rating),
		IsOpened:     req.IsOpened,
	}
	for _, raw := range req.CategoryIDs {
		id, err := model.ParseCategoryID(raw)
		if err != nil {
			return input, err
		}
		input.CategoryIDs = append(input.CategoryIDs, id)
	}
	for _, raw := range req.GenreIDs {
		id, err := model.ParseGenreID(raw)
		if err != nil {
			return input, err
		}
		input.GenreIDs = append(input.GenreIDs, id)
	}
	for _, raw := range req.CastMemberIDs {
		id, err := model.ParseCastMemberID(raw)
		if err != nil {
			return input, err
		}
		input.CastMemberIDs = append(input.CastMemberIDs, id)
	}
	return input, nil
}

func toVideoResponse(v *model.Video) VideoResponse {
	resp := VideoResponse{
		ID:            v.ID.String(),
		Title:         v.Title,
		Description:   v.Description,
		YearLaunched:  v.YearLaunched,
		Duration:      v.Duration,
		Rating:        string(v.Rating),
		IsOpened:      v.IsOpened,
		IsPublished:   v.IsPublished,
		Banner:        toImageResponse(v.Banner),
		Thumbnail:     toImageResponse(v.Thumbnail),
		ThumbnailHalf: toImageResponse(v.ThumbnailHalf),
		Trailer:       toAudioVideoResponse(v.Trailer),
		Video:         toAudioVideoResponse(v.Video),
		Categories:    make([]NestedEntityResponse, 0, len(v.Categories)),
		Genres:        make([]NestedEntityResponse, 0, len(v.Genres)),
		CastMembers:   make([]NestedCastMemberResponse, 0, len(v.CastMembers)),
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	for _, c := range v.Categories {
		resp.Categories = append(resp.Categories, NestedEntityResponse{
			ID:       c.ID.String(),
			Name:     c.Name,
			IsActive: c.IsActive,
		})
	}
	for _, g := range v.Genres {
		resp.Genres = append(resp.Genres, NestedEntityResponse{
			ID:       g.ID.String(),
			Name:     g.Name,
			IsActive: g.IsActive,
		})
	}
	for _, m := range v.CastMembers {
		resp.CastMembers = append(resp.CastMembers, NestedCastMemberResponse{
			ID:       m.ID.String(),
			Name:     m.Name,
			Type:     int(m.Type),
			IsActive: m.IsActive,
		})
	}
	// Relation maps iterate in random order; keep the payload stable.
	sort.Slice(resp.Categories, func(i, j int) bool { return resp.Categories[i].ID < resp.Categories[j].ID })
	sort.Slice(resp.Genres, func(i, j int) bool { return resp.Genres[i].ID < resp.Genres[j].ID })
	sort.Slice(resp.CastMembers, func(i, j int) bool { return resp.CastMembers[i].ID < resp.CastMembers[j].ID })
	return resp
}

func toImageResponse(m *model.ImageMedia) *ImageMediaResponse {
	if m == nil {
		return nil
	}
	return &ImageMediaResponse{Name: m.Name, Location: m.Location}
}

func toAudioVideoResponse(m *model.AudioVideoMedia) *AudioVideoMediaResponse {
	if m == nil {
		return nil
	}
	return &AudioVideoMediaResponse{
		Name:            m.Name,
		RawLocation:     m.RawLocation,
		EncodedLocation: m.EncodedLocation,
		Status:          string(m.Status),
	}
}
