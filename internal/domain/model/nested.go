package model

import "time"

// Nested snapshots are denormalized copies of related aggregates taken at
// association time. They travel inside the Video aggregate and its search
// document so the index can answer relation queries without joins. Only
// DeletedAt is updated after construction, when the source aggregate is
// soft-deleted.

type NestedCategory struct {
	ID        CategoryID
	Name      string
	IsActive  bool
	DeletedAt *time.Time
}

func NestedCategoryFromCategory(c *Category) NestedCategory {
	return NestedCategory{
		ID:        c.ID,
		Name:      c.Name,
		IsActive:  c.IsActive,
		DeletedAt: c.DeletedAt,
	}
}

type NestedGenre struct {
	ID        GenreID
	Name      string
	IsActive  bool
	DeletedAt *time.Time
}

func NestedGenreFromGenre(g *Genre) NestedGenre {
	return NestedGenre{
		ID:        g.ID,
		Name:      g.Name,
		IsActive:  g.IsActive,
		DeletedAt: g.DeletedAt,
	}
}

type NestedCastMember struct {
	ID        CastMemberID
	Name      string
	Type      CastMemberType
	IsActive  bool
	DeletedAt *time.Time
}

func NestedCastMemberFromCastMember(m *CastMember) NestedCastMember {
	return NestedCastMember{
		ID:        m.ID,
		Name:      m.Name,
		Type:      m.Type,
		IsActive:  m.IsActive,
		DeletedAt: m.DeletedAt,
	}
}
