package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AllowedImageTypes is the whitelist of uploadable image content types.
// SVG is excluded because it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorage issues presigned upload URLs for item images
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PublicURL returns the URL under which an uploaded object is served
	PublicURL(storageKey string) string
}

// UnitRunner runs work against the item and listing repositories in one transaction
type UnitRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, u *marketapp.Unit) error) error
}

// ItemService handles item CRUD for owners
type ItemService struct {
	itemRepo     catalog.ItemRepository
	units        UnitRunner
	storage      ObjectStorage
	uploadExpiry time.Duration
	logger       *zap.Logger
}

// NewItemService creates a new ItemService. storage may be nil when uploads are disabled.
func NewItemService(
	itemRepo catalog.ItemRepository,
	units UnitRunner,
	storage ObjectStorage,
	uploadExpiry time.Duration,
	logger *zap.Logger,
) *ItemService {
	if uploadExpiry <= 0 {
		uploadExpiry = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		itemRepo:     itemRepo,
		units:        units,
		storage:      storage,
		uploadExpiry: uploadExpiry,
		logger:       logger,
	}
}

// Create creates an item owned by the actor
func (s *ItemService) Create(ctx context.Context, actorID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	item, err := catalog.NewItem(actorID, catalog.ItemDetails{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Item created",
		zap.String("item_id", item.ID.String()),
		zap.String("owner_id", actorID.String()))

	resp := ToItemResponse(item)
	return &resp, nil
}

// ListMine returns the actor's visible items
func (s *ItemService) ListMine(ctx context.Context, actorID uuid.UUID) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToItemResponse(&items[i]))
	}
	return out, nil
}

// Update changes item metadata; owner only
func (s *ItemService) Update(ctx context.Context, actorID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Update(actorID, catalog.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete removes an item from visibility.
// Items bound to an active listing cannot be deleted. The item row stays
// locked from the check to the delete so a concurrent listing waits for it.
func (s *ItemService) Delete(ctx context.Context, actorID, itemID uuid.UUID) error {
	err := s.units.Run(ctx, func(ctx context.Context, u *marketapp.Unit) error {
		item, err := u.Items().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.OwnedBy(actorID) {
			return catalog.ErrNotOwner
		}
		listed, err := u.Listings().ExistsActiveForItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := item.EnsureDeletable(actorID, listed); err != nil {
			return err
		}
		return u.Items().Delete(ctx, itemID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Item deleted", zap.String("item_id", itemID.String()))
	return nil
}

// RequestImageUpload issues a presigned upload URL and records the public image URL on the item
func (s *ItemService) RequestImageUpload(ctx context.Context, actorID, itemID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CategoryStateConflict, "STORAGE_DISABLED", "Image uploads are not enabled")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Content type %q is not an allowed image type", req.ContentType))
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(actorID) {
		return nil, catalog.ErrNotOwner
	}

	key := fmt.Sprintf("items/%s/%s%s", item.ID, uuid.New(), ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.uploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	publicURL := s.storage.PublicURL(key)
	if err := item.SetImage(actorID, publicURL); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return &ImageUploadResponse{
		UploadURL:  uploadURL,
		ImageURL:   publicURL,
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}
