package repository

import (
	"github.com/hszk-dev/catalog/internal/domain/model"
)

// VideoSearchFilter is the filter shape for video searches. Terms matches
// fuzzily against title and description; the id slices match when any of the
// video's nested entries is in the requested set; IsPublished, when set, is an
// exact match.
type VideoSearchFilter struct {
	Terms         string
	CategoryIDs   []model.CategoryID
	GenreIDs      []model.GenreID
	CastMemberIDs []model.CastMemberID
	IsPublished   *bool
}

// VideoRepository is the Video persistence contract, implemented by the
// relational backend (source of truth) and the search-engine backend
// (denormalized projection).
type VideoRepository = Repository[*model.Video, model.VideoID, VideoSearchFilter]

// TermFilter is the plain filter shape shared by the simple catalog
// aggregates.
type TermFilter struct {
	Terms string
}

type CategoryRepository = Repository[*model.Category, model.CategoryID, TermFilter]

type GenreRepository = Repository[*model.Genre, model.GenreID, TermFilter]

type CastMemberRepository = Repository[*model.CastMember, model.CastMemberID, TermFilter]
