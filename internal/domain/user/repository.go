package user

import "context"

// UserRepository defines data access methods for user accounts.
type UserRepository interface {
	// Create creates a new user account
	Create(ctx context.Context, user User) (User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByOAuth retrieves a user by oauth provider and provider ID
	GetByOAuth(ctx context.Context, provider string, providerID string) (User, error)

	// Update updates name, email and device metadata
	Update(ctx context.Context, user User) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
