package resolver

import (
	"context"
	"errors"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
)

// ErrMissingEmail: the provider supplied no email. Email is the only key
// that lets a future login reach the same account, so such a profile is
// rejected rather than stored unlinkable.
var ErrMissingEmail = errors.New("provider profile has no email")

// Resolver maps a verified provider assertion to a local user, creating or
// linking accounts as needed. It is the only place where identity-to-user
// mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, assertion *auth.Assertion) (*auth.User, error)
}
