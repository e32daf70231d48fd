package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and UTC timestamps shared by persisted entities.
// CreatedAt also breaks ties when bookings and offers are ordered.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a base entity with a fresh random ID
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID lets entities satisfy narrow views such as marketplace.ItemOwnership
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch records a modification. UpdatedAt never precedes CreatedAt,
// even when the wall clock steps back.
func (e *BaseEntity) Touch() {
	now := time.Now().UTC()
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	e.UpdatedAt = now
}
