package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// Field limits
const (
	MaxTitleLength    = 200
	MaxCategoryLength = 100
	MaxImageURLLength = 500
)

// Catalog errors
var (
	ErrNotOwner            = shared.NewDomainError(shared.CategoryAuthorization, "NOT_OWNER", "Only the item owner may perform this action")
	ErrActiveListingExists = shared.NewDomainError(shared.CategoryStateConflict, "ACTIVE_LISTING_EXISTS", "Item is bound to an active listing")
)

// Item is a physical good owned by exactly one actor. Its identity never
// changes; title, description, category and image are editable by the owner.
type Item struct {
	shared.BaseAggregateRoot
	OwnerID     uuid.UUID
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// ItemDetails holds the descriptive metadata of an item
type ItemDetails struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// ItemPatch carries optional metadata changes
type ItemPatch struct {
	Title       *string
	Description *string
	Category    *string
	ImageURL    *string
}

// NewItem creates a new item owned by ownerID
func NewItem(ownerID uuid.UUID, details ItemDetails) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Owner cannot be empty")
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
	}
	if err := item.setTitle(details.Title); err != nil {
		return nil, err
	}
	if err := item.setCategory(details.Category); err != nil {
		return nil, err
	}
	if err := item.setImageURL(details.ImageURL); err != nil {
		return nil, err
	}
	item.Description = strings.TrimSpace(details.Description)
	return item, nil
}

// OwnedBy reports whether actorID owns the item
func (i *Item) OwnedBy(actorID uuid.UUID) bool {
	return i.OwnerID == actorID
}

// Update applies metadata changes requested by the owner
func (i *Item) Update(actorID uuid.UUID, patch ItemPatch) error {
	if !i.OwnedBy(actorID) {
		return ErrNotOwner
	}
	if patch.Title != nil {
		if err := i.setTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Category != nil {
		if err := i.setCategory(*patch.Category); err != nil {
			return err
		}
	}
	if patch.ImageURL != nil {
		if err := i.setImageURL(*patch.ImageURL); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		i.Description = strings.TrimSpace(*patch.Description)
	}
	i.Touch()
	return nil
}

// SetImage records the public URL of an uploaded image
func (i *Item) SetImage(actorID uuid.UUID, url string) error {
	if !i.OwnedBy(actorID) {
		return ErrNotOwner
	}
	if err := i.setImageURL(url); err != nil {
		return err
	}
	i.Touch()
	return nil
}

// EnsureDeletable checks that the owner may remove the item.
// Items bound to an active listing are kept so transactions and offers stay consistent.
func (i *Item) EnsureDeletable(actorID uuid.UUID, hasActiveListing bool) error {
	if !i.OwnedBy(actorID) {
		return ErrNotOwner
	}
	if hasActiveListing {
		return ErrActiveListingExists
	}
	return nil
}

func (i *Item) setTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.ErrInvalidInput.WithMessage("Title is required")
	}
	if len(title) > MaxTitleLength {
		return shared.ErrInvalidInput.WithMessage("Title cannot exceed 200 characters")
	}
	i.Title = title
	return nil
}

func (i *Item) setCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return shared.ErrInvalidInput.WithMessage("Category is required")
	}
	if len(category) > MaxCategoryLength {
		return shared.ErrInvalidInput.WithMessage("Category cannot exceed 100 characters")
	}
	i.Category = category
	return nil
}

func (i *Item) setImageURL(url string) error {
	url = strings.TrimSpace(url)
	if len(url) > MaxImageURLLength {
		return shared.ErrInvalidInput.WithMessage("Image URL cannot exceed 500 characters")
	}
	i.ImageURL = url
	return nil
}
