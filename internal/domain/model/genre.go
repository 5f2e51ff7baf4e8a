package model

import "time"

// Genre is a catalog genre aggregate. A genre references the categories it
// belongs to by id.
type Genre struct {
	ID          GenreID
	Name        string
	CategoryIDs map[CategoryID]struct{}
	IsActive    bool
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

func NewGenre(name string, categoryIDs []CategoryID) *Genre {
	g := &Genre{
		ID:          NewGenreID(),
		Name:        name,
		CategoryIDs: map[CategoryID]struct{}{},
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	for _, id := range categoryIDs {
		g.CategoryIDs[id] = struct{}{}
	}
	return g
}

func (g *Genre) ChangeName(name string) {
	g.Name = name
}

func (g *Genre) AddCategoryID(id CategoryID) {
	g.CategoryIDs[id] = struct{}{}
}

func (g *Genre) RemoveCategoryID(id CategoryID) {
	delete(g.CategoryIDs, id)
}

// SyncCategoryIDs replaces the whole category id set.
func (g *Genre) SyncCategoryIDs(ids []CategoryID) error {
	if len(ids) == 0 {
		return ErrSyncEmptyCategories
	}
	next := make(map[CategoryID]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	g.CategoryIDs = next
	return nil
}

func (g *Genre) Activate() {
	g.IsActive = true
}

func (g *Genre) Deactivate() {
	g.IsActive = false
}

func (g *Genre) MarkAsDeleted() {
	now := time.Now().UTC()
	g.DeletedAt = &now
}

func (g *Genre) EntityID() string { return g.ID.String() }

// Events returns the pending domain events. Genres emit none today.
func (g *Genre) Events() []DomainEvent { return nil }

// ClearEvents drops the pending events. No-op: genres emit none today.
func (g *Genre) ClearEvents() {}

func (g *Genre) Validate() *Notification {
	n := NewNotification()
	validateName(n, g.Name)
	if len(g.CategoryIDs) == 0 {
		n.AddError("categories", "must have at least one category")
	}
	return n
}
