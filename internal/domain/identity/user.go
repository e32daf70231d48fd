package identity

import (
	"regexp"
	"strings"

	"github.com/swapmarket/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
var bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// SetPasswordCost overrides the bcrypt cost; values outside bcrypt's range are ignored
func SetPasswordCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		bcryptCost = cost
	}
}

// Identity errors
var (
	ErrUsernameTaken      = shared.NewDomainError(shared.CategoryStateConflict, "USERNAME_TAKEN", "Username is already taken")
	ErrEmailTaken         = shared.NewDomainError(shared.CategoryStateConflict, "EMAIL_TAKEN", "Email is already in use")
	ErrInvalidCredentials = shared.NewDomainError(shared.CategoryAuthorization, "INVALID_CREDENTIALS", "Invalid username or password")
)

// User is a marketplace participant. Its ID is the actor id used by every
// lifecycle operation.
type User struct {
	shared.BaseEntity
	Username     string
	Email        string
	PasswordHash string
}

// NewUser creates a new user with a hashed password
func NewUser(username, email, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError(shared.CategoryTransactionFailure, "PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func validateUsername(username string) error {
	if username == "" {
		return shared.ErrInvalidInput.WithMessage("Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.ErrInvalidInput.WithMessage("Username must be at least 3 characters")
	}
	if len(username) > 80 {
		return shared.ErrInvalidInput.WithMessage("Username cannot exceed 80 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.ErrInvalidInput.WithMessage("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 120 {
		return shared.ErrInvalidInput.WithMessage("Email cannot exceed 120 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.ErrInvalidInput.WithMessage("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.ErrInvalidInput.WithMessage("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores input past 72 bytes
		return shared.ErrInvalidInput.WithMessage("Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.ErrInvalidInput.WithMessage("Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
