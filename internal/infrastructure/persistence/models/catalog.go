package models

import (
	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// ItemModel is the persistence model for the Item domain entity.
// Deleted items keep their row behind a DeletedAt tombstone so that listings,
// transactions and offers referencing them still resolve.
type ItemModel struct {
	AggregateModel
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(200);not null"`
	Description string         `gorm:"type:text"`
	Category    string         `gorm:"type:varchar(100);not null;index"`
	ImageURL    string         `gorm:"type:varchar(500)"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OwnerID:           m.OwnerID,
		Title:             m.Title,
		Description:       m.Description,
		Category:          m.Category,
		ImageURL:          m.ImageURL,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.OwnerID = i.OwnerID
	m.Title = i.Title
	m.Description = i.Description
	m.Category = i.Category
	m.ImageURL = i.ImageURL
}

// ItemModelFromDomain creates a new persistence model from domain Item.
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}
