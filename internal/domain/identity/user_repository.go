package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByUsername finds a user by normalized username
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByIDs finds users by IDs, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error)
	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail checks if an email is in use
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create inserts a new user
	Create(ctx context.Context, user *User) error
}
