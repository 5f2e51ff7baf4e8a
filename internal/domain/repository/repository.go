package repository

import (
	"context"
)

// SortDirection orders search results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchParams carries pagination, sorting and a backend-specific filter
// shape. Page is 1-based; the backend computes offset = (page-1)*per_page.
type SearchParams[F any] struct {
	Page    int
	PerPage int
	Sort    string
	SortDir SortDirection
	Filter  F
}

const defaultPerPage = 15

// Offset returns the number of items to skip for the requested page.
func (p SearchParams[F]) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// Limit returns the page size, defaulting when unset.
func (p SearchParams[F]) Limit() int {
	if p.PerPage < 1 {
		return defaultPerPage
	}
	return p.PerPage
}

// SearchResult is one page of matches plus the engine-reported total, which
// is independent of the page slice returned.
type SearchResult[E any] struct {
	Items       []E
	Total       int
	CurrentPage int
	PerPage     int
}

// ExistsResult partitions a batch of ids into those that exist and those that
// do not.
type ExistsResult[ID comparable] struct {
	Existent    []ID
	NonExistent []ID
}

// Repository is the persistence contract implemented identically by the
// relational and the search-engine backends.
//
// Update and Delete return *model.NotFoundError when the target id is absent.
// FindByID returns the zero value and a nil error when the id is absent.
// ExistsByID returns ErrEmptyIDs when called with no ids.
type Repository[E any, ID comparable, F any] interface {
	Insert(ctx context.Context, entity E) error
	BulkInsert(ctx context.Context, entities []E) error
	Update(ctx context.Context, entity E) error
	Delete(ctx context.Context, id ID) error
	FindByID(ctx context.Context, id ID) (E, error)
	FindByIDs(ctx context.Context, ids []ID) ([]E, error)
	ExistsByID(ctx context.Context, ids []ID) (ExistsResult[ID], error)
	FindAll(ctx context.Context) ([]E, error)
	Search(ctx context.Context, params SearchParams[F]) (SearchResult[E], error)
}
