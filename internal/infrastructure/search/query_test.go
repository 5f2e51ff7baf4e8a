package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

func encodeBody(t *testing.T, body map[string]any) string {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return string(encoded)
}

func TestBuildVideoSearchBody_AlwaysScopesType(t *testing.T) {
	body := buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{}, nil)
	encoded := encodeBody(t, body)

	if !strings.Contains(encoded, `"term":{"type":"Video"}`) {
		t.Errorf("body missing type discriminator: %s", encoded)
	}
}

func TestBuildVideoSearchBody_Clauses(t *testing.T) {
	published := true
	categoryID := model.NewCategoryID()
	genreID := model.NewGenreID()
	memberID := model.NewCastMemberID()

	body := buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{
		Filter: repository.VideoSearchFilter{
			Terms:         "clasic",
			CategoryIDs:   []model.CategoryID{categoryID},
			GenreIDs:      []model.GenreID{genreID},
			CastMemberIDs: []model.CastMemberID{memberID},
			IsPublished:   &published,
		},
	}, nil)
	encoded := encodeBody(t, body)

	for _, want := range []string{
		`"multi_match":{"fields":["title","description"],"fuzziness":"AUTO","query":"clasic"}`,
		`"nested":{"path":"categories","query":{"terms":{"categories.id":["` + categoryID.String() + `"]}}}`,
		`"nested":{"path":"genres","query":{"terms":{"genres.id":["` + genreID.String() + `"]}}}`,
		`"nested":{"path":"cast_members","query":{"terms":{"cast_members.id":["` + memberID.String() + `"]}}}`,
		`"term":{"is_published":true}`,
	} {
		if !strings.Contains(encoded, want) {
			t.Errorf("body missing clause %s\nbody: %s", want, encoded)
		}
	}
}

func TestBuildVideoSearchBody_Sorting(t *testing.T) {
	tests := []struct {
		name string
		sort string
		dir  repository.SortDirection
		want string
	}{
		{name: "title sorts on keyword variant", sort: "title", dir: repository.SortAsc, want: `"sort":[{"title.keyword":{"order":"asc"}}]`},
		{name: "created_at", sort: "created_at", dir: repository.SortDesc, want: `"sort":[{"created_at":{"order":"desc"}}]`},
		{name: "unknown key falls back", sort: "rating", dir: repository.SortAsc, want: `"sort":[{"created_at":{"order":"asc"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{
				Sort:    tt.sort,
				SortDir: tt.dir,
			}, nil)
			encoded := encodeBody(t, body)
			if !strings.Contains(encoded, tt.want) {
				t.Errorf("body sort = %s, want %s", encoded, tt.want)
			}
		})
	}
}

func TestBuildVideoSearchBody_Pagination(t *testing.T) {
	body := buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{
		Page:    3,
		PerPage: 10,
	}, nil)

	if body["from"] != 20 {
		t.Errorf("from = %v, want 20", body["from"])
	}
	if body["size"] != 10 {
		t.Errorf("size = %v, want 10", body["size"])
	}
}

func TestBuildVideoSearchBody_Scopes(t *testing.T) {
	body := buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{}, []Scope{LiveOnly})
	encoded := encodeBody(t, body)

	want := `"must_not":{"exists":{"field":"deleted_at"}}`
	if !strings.Contains(encoded, want) {
		t.Errorf("body missing live-only scope: %s", encoded)
	}

	unscoped := encodeBody(t, buildVideoSearchBody(repository.SearchParams[repository.VideoSearchFilter]{}, nil))
	if strings.Contains(unscoped, "must_not") {
		t.Errorf("unscoped body carries a scope clause: %s", unscoped)
	}
}
