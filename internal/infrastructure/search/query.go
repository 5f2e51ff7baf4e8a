package search

import (
	"fmt"

	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// Scope is a composable filter clause attached to every query built while it
// is active on a repository instance.
type Scope func() map[string]any

// LiveOnly excludes soft-deleted documents. A deleted_at of null is not
// indexed, so an exists check is the exact complement.
func LiveOnly() map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must_not": map[string]any{
				"exists": map[string]any{"field": "deleted_at"},
			},
		},
	}
}

// videoSortFields maps logical sort keys to physical document fields. Title
// sorts on the keyword sub-field: the analyzed field is for fuzzy matching
// and would not give deterministic lexical order.
var videoSortFields = map[string]string{
	"title":      "title.keyword",
	"created_at": "created_at",
}

func typeTerm(documentType string) map[string]any {
	return map[string]any{"term": map[string]any{"type": documentType}}
}

func nestedTerms(path string, ids []string) map[string]any {
	return map[string]any{
		"nested": map[string]any{
			"path": path,
			"query": map[string]any{
				"terms": map[string]any{path + ".id": ids},
			},
		},
	}
}

// buildVideoSearchBody assembles the request body for a paged video search.
// The type discriminator is always in the filter set so a multi-type index
// never leaks cross-type results.
func buildVideoSearchBody(params repository.SearchParams[repository.VideoSearchFilter], scopes []Scope) map[string]any {
	filter := []any{typeTerm(DocumentTypeVideo)}
	for _, scope := range scopes {
		filter = append(filter, scope())
	}

	var must []any
	f := params.Filter
	if f.Terms != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     f.Terms,
				"fields":    []string{"title", "description"},
				"fuzziness": "AUTO",
			},
		})
	}
	if len(f.CategoryIDs) > 0 {
		must = append(must, nestedTerms("categories", stringIDs(f.CategoryIDs)))
	}
	if len(f.GenreIDs) > 0 {
		must = append(must, nestedTerms("genres", stringIDs(f.GenreIDs)))
	}
	if len(f.CastMemberIDs) > 0 {
		must = append(must, nestedTerms("cast_members", stringIDs(f.CastMemberIDs)))
	}
	if f.IsPublished != nil {
		filter = append(filter, map[string]any{
			"term": map[string]any{"is_published": *f.IsPublished},
		})
	}

	boolQuery := map[string]any{"filter": filter}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  params.Offset(),
		"size":  params.Limit(),
		"sort":  buildSort(params.Sort, params.SortDir),
	}
}

// buildScopedBody assembles a non-paged body (find-all style) honoring the
// type discriminator and the active scopes.
func buildScopedBody(scopes []Scope, size int) map[string]any {
	filter := []any{typeTerm(DocumentTypeVideo)}
	for _, scope := range scopes {
		filter = append(filter, scope())
	}
	return map[string]any{
		"query": map[string]any{"bool": map[string]any{"filter": filter}},
		"size":  size,
		"sort":  buildSort("created_at", repository.SortDesc),
	}
}

func buildSort(sortKey string, dir repository.SortDirection) []any {
	field, ok := videoSortFields[sortKey]
	if !ok {
		field = "created_at"
	}
	order := "desc"
	if dir == repository.SortAsc {
		order = "asc"
	}
	return []any{map[string]any{field: map[string]any{"order": order}}}
}

func stringIDs[T fmt.Stringer](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
