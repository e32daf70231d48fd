package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapmarket/backend/internal/domain/marketplace"
)

// ListingModel is the persistence model for the Listing aggregate.
// At most one active listing exists per item, enforced by a partial unique index.
type ListingModel struct {
	AggregateModel
	ItemID         uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_listings_active_item,where:active = true;index"`
	ListerID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Kind           marketplace.ListingKind `gorm:"type:varchar(10);not null;index"`
	Price          decimal.Decimal         `gorm:"type:numeric(10,2);not null;default:0"`
	DailyRate      decimal.Decimal         `gorm:"type:numeric(10,2);not null;default:0"`
	SwapPreference string                  `gorm:"type:text"`
	Active         bool                    `gorm:"not null;default:true;index"`
	DeactivatedAt  *time.Time
	Deactivation   marketplace.DeactivationReason `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts the persistence model to a domain Listing.
func (m *ListingModel) ToDomain() *marketplace.Listing {
	return &marketplace.Listing{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ItemID:            m.ItemID,
		ListerID:          m.ListerID,
		Kind:              m.Kind,
		Price:             m.Price,
		DailyRate:         m.DailyRate,
		SwapPreference:    m.SwapPreference,
		Active:            m.Active,
		DeactivatedAt:     m.DeactivatedAt,
		Deactivation:      m.Deactivation,
	}
}

// FromDomain populates the persistence model from a domain Listing.
func (m *ListingModel) FromDomain(l *marketplace.Listing) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.ItemID = l.ItemID
	m.ListerID = l.ListerID
	m.Kind = l.Kind
	m.Price = l.Price
	m.DailyRate = l.DailyRate
	m.SwapPreference = l.SwapPreference
	m.Active = l.Active
	m.DeactivatedAt = l.DeactivatedAt
	m.Deactivation = l.Deactivation
}

// ListingModelFromDomain creates a new persistence model from domain Listing.
func ListingModelFromDomain(l *marketplace.Listing) *ListingModel {
	m := &ListingModel{}
	m.FromDomain(l)
	return m
}

// TransactionModel is the persistence model for sale and rental transactions.
// Rental periods are stored as half-open [start_date, end_date) calendar days.
type TransactionModel struct {
	AggregateModel
	ListingID   uuid.UUID                     `gorm:"type:uuid;not null;index:idx_transactions_listing_period,priority:1"`
	BuyerID     uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Kind        marketplace.TransactionKind   `gorm:"type:varchar(10);not null"`
	Status      marketplace.TransactionStatus `gorm:"type:varchar(20);not null"`
	TotalPrice  decimal.Decimal               `gorm:"type:numeric(10,2);not null"`
	StartDate   *time.Time                    `gorm:"type:date;index:idx_transactions_listing_period,priority:2"`
	EndDate     *time.Time                    `gorm:"type:date"`
	RespondedAt *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *marketplace.Transaction {
	t := &marketplace.Transaction{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ListingID:         m.ListingID,
		BuyerID:           m.BuyerID,
		Kind:              m.Kind,
		Status:            m.Status,
		TotalPrice:        m.TotalPrice,
		RespondedAt:       m.RespondedAt,
	}
	if m.StartDate != nil && m.EndDate != nil {
		t.Period = &marketplace.DateRange{Start: m.StartDate.UTC(), End: m.EndDate.UTC()}
	}
	return t
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *marketplace.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ListingID = t.ListingID
	m.BuyerID = t.BuyerID
	m.Kind = t.Kind
	m.Status = t.Status
	m.TotalPrice = t.TotalPrice
	m.RespondedAt = t.RespondedAt
	m.StartDate, m.EndDate = nil, nil
	if t.Period != nil {
		start, end := t.Period.Start, t.Period.End
		m.StartDate, m.EndDate = &start, &end
	}
}

// TransactionModelFromDomain creates a new persistence model from domain Transaction.
func TransactionModelFromDomain(t *marketplace.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// SwapOfferModel is the persistence model for swap offers.
type SwapOfferModel struct {
	AggregateModel
	ListingID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	OffererID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	OfferedItemID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Message       string                  `gorm:"type:text"`
	Status        marketplace.OfferStatus `gorm:"type:varchar(20);not null"`
	RespondedAt   *time.Time
}

// TableName returns the table name for GORM
func (SwapOfferModel) TableName() string {
	return "swap_offers"
}

// ToDomain converts the persistence model to a domain SwapOffer.
func (m *SwapOfferModel) ToDomain() *marketplace.SwapOffer {
	return &marketplace.SwapOffer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ListingID:         m.ListingID,
		OffererID:         m.OffererID,
		OfferedItemID:     m.OfferedItemID,
		Message:           m.Message,
		Status:            m.Status,
		RespondedAt:       m.RespondedAt,
	}
}

// FromDomain populates the persistence model from a domain SwapOffer.
func (m *SwapOfferModel) FromDomain(o *marketplace.SwapOffer) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ListingID = o.ListingID
	m.OffererID = o.OffererID
	m.OfferedItemID = o.OfferedItemID
	m.Message = o.Message
	m.Status = o.Status
	m.RespondedAt = o.RespondedAt
}

// SwapOfferModelFromDomain creates a new persistence model from domain SwapOffer.
func SwapOfferModelFromDomain(o *marketplace.SwapOffer) *SwapOfferModel {
	m := &SwapOfferModel{}
	m.FromDomain(o)
	return m
}

// AllModels lists every persistence model, in dependency order, for auto-migration in tests
func AllModels() []any {
	return []any{
		&UserModel{},
		&ItemModel{},
		&ListingModel{},
		&TransactionModel{},
		&SwapOfferModel{},
	}
}
