package model

import "time"

// CastMember is a catalog cast member aggregate (director or actor).
type CastMember struct {
	ID        CastMemberID
	Name      string
	Type      CastMemberType
	IsActive  bool
	CreatedAt time.Time
	DeletedAt *time.Time
}

func NewCastMember(name string, memberType CastMemberType) *CastMember {
	return &CastMember{
		ID:        NewCastMemberID(),
		Name:      name,
		Type:      memberType,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func (m *CastMember) ChangeName(name string) {
	m.Name = name
}

func (m *CastMember) ChangeType(memberType CastMemberType) {
	m.Type = memberType
}

func (m *CastMember) MarkAsDeleted() {
	now := time.Now().UTC()
	m.DeletedAt = &now
}

func (m *CastMember) EntityID() string { return m.ID.String() }

// Events returns the pending domain events. Cast members emit none today.
func (m *CastMember) Events() []DomainEvent { return nil }

// ClearEvents drops the pending events. No-op: cast members emit none today.
func (m *CastMember) ClearEvents() {}

func (m *CastMember) Validate() *Notification {
	n := NewNotification()
	validateName(n, m.Name)
	if !m.Type.IsValid() {
		n.AddError("type", "must be 1 (director) or 2 (actor)")
	}
	return n
}
