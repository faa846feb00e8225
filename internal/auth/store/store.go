// Package store persists user identity records. The interface is the only
// thing the auth core depends on; Postgres backs production and an in-memory
// implementation backs tests and DSN-less development.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
)

var (
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate surfaces a uniqueness violation (email or provider id).
	// Callers racing to create the same identity treat it as recoverable.
	ErrDuplicate = errors.New("duplicate user")
)

type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*auth.User, error)

	FindByProviderID(ctx context.Context, provider auth.Provider, providerID string) (*auth.User, error)

	Create(ctx context.Context, user *auth.User) error

	// Save updates an existing record.
	Save(ctx context.Context, user *auth.User) error
}
