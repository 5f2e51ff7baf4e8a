package model

import (
	"time"
	"unicode/utf8"
)

const maxNameLength = 255

// Category is a catalog classification aggregate.
type Category struct {
	ID          CategoryID
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// NewCategory creates an active Category. Structural validation is explicit;
// call Validate before persisting.
func NewCategory(name, description string) *Category {
	return &Category{
		ID:          NewCategoryID(),
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

func (c *Category) ChangeName(name string) {
	c.Name = name
}

func (c *Category) ChangeDescription(description string) {
	c.Description = description
}

func (c *Category) Activate() {
	c.IsActive = true
}

func (c *Category) Deactivate() {
	c.IsActive = false
}

// MarkAsDeleted soft-deletes the category.
func (c *Category) MarkAsDeleted() {
	now := time.Now().UTC()
	c.DeletedAt = &now
}

func (c *Category) EntityID() string { return c.ID.String() }

// Events returns the pending domain events. Categories emit none today.
func (c *Category) Events() []DomainEvent { return nil }

// ClearEvents drops the pending events. No-op: categories emit none today.
func (c *Category) ClearEvents() {}

func (c *Category) Validate() *Notification {
	n := NewNotification()
	validateName(n, c.Name)
	return n
}

func validateName(n *Notification, name string) {
	if name == "" {
		n.AddError("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		n.AddError("name", "must be at most 255 characters")
	}
}
