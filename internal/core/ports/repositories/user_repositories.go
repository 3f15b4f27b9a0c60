package repositories

import (
	"context"
	"time"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// UserReader defines the interface for reading user data.
type UserReader interface {
	// FindUserByID retrieves a user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves active users with keyset pagination.
	ListUsers(ctx context.Context, limit int, nextToken *string) ([]domain.User, *string, error)
}

// UserWriter defines the interface for modifying user data.
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser persists changes to an existing user.
	UpdateUser(ctx context.Context, user domain.User) error

	// DeactivateUser soft-deletes a user.
	DeactivateUser(ctx context.Context, userID string, now time.Time) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
