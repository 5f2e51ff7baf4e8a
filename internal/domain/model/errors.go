package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Programming-contract violations. These indicate caller bugs, not user input,
// and are returned immediately rather than accumulated.
var (
	ErrSyncEmptyCategories  = errors.New("categories sync requires at least one category")
	ErrSyncEmptyGenres      = errors.New("genres sync requires at least one genre")
	ErrSyncEmptyCastMembers = errors.New("cast members sync requires at least one cast member")
)

// EntityValidationError aggregates every structural validation failure found
// on a create or update path.
type EntityValidationError struct {
	Fields map[string][]string
}

func NewEntityValidationError(n *Notification) *EntityValidationError {
	return &EntityValidationError{Fields: n.Errors()}
}

func (e *EntityValidationError) Error() string {
	return "entity validation error: " + formatFieldErrors(e.Fields)
}

// LoadEntityError aggregates every reconstruction failure found when loading
// an entity from storage. Carrying the full set of field messages keeps
// corruption diagnostics usable.
type LoadEntityError struct {
	Fields map[string][]string
}

func NewLoadEntityError(n *Notification) *LoadEntityError {
	return &LoadEntityError{Fields: n.Errors()}
}

func (e *LoadEntityError) Error() string {
	return "load entity error: " + formatFieldErrors(e.Fields)
}

// NotFoundError is returned when a repository operation targets ids that do
// not exist.
type NotFoundError struct {
	Entity string
	IDs    []string
}

func NewNotFoundError(entity string, ids ...string) *NotFoundError {
	return &NotFoundError{Entity: entity, IDs: ids}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(e.IDs, ", "))
}

func formatFieldErrors(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s [%s]", field, strings.Join(fields[field], ", ")))
	}
	return strings.Join(parts, "; ")
}
