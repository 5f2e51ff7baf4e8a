package model

import (
	"fmt"

	"github.com/google/uuid"
)

// InvalidIdentifierError is returned when a typed identifier is constructed
// from a malformed UUID string.
type InvalidIdentifierError struct {
	Entity string
	Value  string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s identifier: %q is not a valid UUID", e.Entity, e.Value)
}

// VideoID identifies a Video aggregate. The zero value is not a valid identifier.
type VideoID struct {
	id uuid.UUID
}

func NewVideoID() VideoID {
	return VideoID{id: uuid.New()}
}

// ParseVideoID builds a VideoID from its string form.
// Returns *InvalidIdentifierError if the string is not a valid UUID.
func ParseVideoID(s string) (VideoID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return VideoID{}, &InvalidIdentifierError{Entity: "video", Value: s}
	}
	return VideoID{id: id}, nil
}

func (v VideoID) String() string { return v.id.String() }
func (v VideoID) IsZero() bool   { return v.id == uuid.Nil }

// CategoryID identifies a Category aggregate.
type CategoryID struct {
	id uuid.UUID
}

func NewCategoryID() CategoryID {
	return CategoryID{id: uuid.New()}
}

func ParseCategoryID(s string) (CategoryID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CategoryID{}, &InvalidIdentifierError{Entity: "category", Value: s}
	}
	return CategoryID{id: id}, nil
}

func (c CategoryID) String() string { return c.id.String() }
func (c CategoryID) IsZero() bool   { return c.id == uuid.Nil }

// GenreID identifies a Genre aggregate.
type GenreID struct {
	id uuid.UUID
}

func NewGenreID() GenreID {
	return GenreID{id: uuid.New()}
}

func ParseGenreID(s string) (GenreID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return GenreID{}, &InvalidIdentifierError{Entity: "genre", Value: s}
	}
	return GenreID{id: id}, nil
}

func (g GenreID) String() string { return g.id.String() }
func (g GenreID) IsZero() bool   { return g.id == uuid.Nil }

// CastMemberID identifies a CastMember aggregate.
type CastMemberID struct {
	id uuid.UUID
}

func NewCastMemberID() CastMemberID {
	return CastMemberID{id: uuid.New()}
}

func ParseCastMemberID(s string) (CastMemberID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CastMemberID{}, &InvalidIdentifierError{Entity: "cast member", Value: s}
	}
	return CastMemberID{id: id}, nil
}

func (c CastMemberID) String() string { return c.id.String() }
func (c CastMemberID) IsZero() bool   { return c.id == uuid.Nil }
