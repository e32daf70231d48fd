// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - identity.go: users
// - catalog.go: items (soft-deleted via DeletedAt)
// - marketplace.go: listings, transactions, swap_offers
package models
