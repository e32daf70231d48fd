package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("find user", err)
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a user by normalized username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		return nil, mapError("find user by username", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds users by IDs, keyed by ID
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	out := make(map[uuid.UUID]*identity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, mapError("find users", err)
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail checks if an email is in use
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *GormUserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, mapError("count users", err)
	}
	return count > 0, nil
}

// Create inserts a new user. A unique violation that slipped past the
// existence checks is reported as the taken username or email.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
		model.UpdatedAt = model.CreatedAt
	}
	err := r.db.WithContext(ctx).Create(model).Error
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		if taken, _ := r.ExistsByEmail(ctx, user.Email); taken {
			return identity.ErrEmailTaken
		}
		return identity.ErrUsernameTaken
	}
	return mapError("create user", err)
}
