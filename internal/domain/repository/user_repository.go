// Package repository defines the persistence contracts the usecases depend
// on. Implementations live under internal/infra/persistence.
package repository

import (
	"context"

	"gate/internal/domain/entity"
	"gate/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by user lookups.
var (
	// ErrUserNotFound indicates no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail indicates a write violated the email uniqueness
	// constraint.
	ErrDuplicateEmail = errors.New("email already taken")

	// ErrDuplicatePhone indicates a write violated the phone uniqueness
	// constraint.
	ErrDuplicatePhone = errors.New("phone already taken")

	// ErrDuplicateUser indicates a uniqueness violation whose column could
	// not be determined.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository is the identity store contract. All lookups are exact,
// case-sensitive matches on normalized values.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)

	// Create persists a new user. Uniqueness races surface as one of the
	// ErrDuplicate* sentinels, never as a partial write.
	Create(ctx context.Context, user *entity.User) error

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *entity.User) error

	// UpsertByProvider creates or refreshes the user keyed by
	// (provider, providerID): on create the full profile is stored, on
	// update name/email/avatar are refreshed from the provider's current
	// profile.
	UpsertByProvider(ctx context.Context, provider, providerID string, profile *entity.User) (*entity.User, error)
}
