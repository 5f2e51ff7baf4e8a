package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/usecase"
)

// validate checks request DTO struct tags. Shared across handlers; the
// instance caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func Error(w http.ResponseWriter, status int, err string, message string) {
	JSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// FieldErrors reports a per-field failure map, used for domain validation
// results.
func FieldErrors(w http.ResponseWriter, status int, err string, fields map[string][]string) {
	JSON(w, status, ErrorResponse{
		Error:  err,
		Fields: fields,
	})
}

// RequestValidationError reports validator tag failures on a request DTO.
func RequestValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], "failed on "+fe.Tag())
	}
	FieldErrors(w, http.StatusBadRequest, "invalid_request", fields)
}

// DomainError maps service errors to HTTP status codes: validation failures
// are unprocessable, unknown ids are not found, media policy violations and
// relation-sync misuse are bad requests, everything else is internal.
func DomainError(w http.ResponseWriter, err error) {
	var validationErr *model.EntityValidationError
	if errors.As(err, &validationErr) {
		FieldErrors(w, http.StatusUnprocessableEntity, "validation_failed", validationErr.Fields)
		return
	}
	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		Error(w, http.StatusNotFound, "not_found", notFound.Error())
		return
	}

	var sizeErr *model.InvalidMediaFileSizeError
	var mimeErr *model.InvalidMediaFileMimeTypeError
	switch {
	case errors.As(err, &sizeErr),
		errors.As(err, &mimeErr),
		errors.Is(err, usecase.ErrUnsupportedMediaStatus),
		errors.Is(err, usecase.ErrUnknownMediaType),
		errors.Is(err, model.ErrSyncEmptyCategories),
		errors.Is(err, model.ErrSyncEmptyGenres),
		errors.Is(err, model.ErrSyncEmptyCastMembers):
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, repository.ErrDuplicateEntity):
		Error(w, http.StatusConflict, "duplicate_entity", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// PageResponse is the envelope for list endpoints.
type PageResponse[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}
