package handler

import (
	"net/http"
	"strconv"

	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// pageParams extracts pagination and sorting from the query string. Invalid
// numbers fall back to the repository defaults.
func pageParams(r *http.Request) (page, perPage int, sort string, dir repository.SortDirection) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	perPage, _ = strconv.Atoi(q.Get("per_page"))
	sort = q.Get("sort")
	dir = repository.SortAsc
	if q.Get("dir") == string(repository.SortDesc) {
		dir = repository.SortDesc
	}
	return page, perPage, sort, dir
}
