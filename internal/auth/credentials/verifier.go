package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
)

var (
	// ErrNotFound: no identity exists for the email.
	ErrNotFound = errors.New("no account for email")

	// ErrNoPassword: the identity exists but was created through OAuth and
	// has no password set.
	ErrNoPassword = errors.New("account has no password")

	// ErrMismatch: the password does not match the stored hash.
	ErrMismatch = errors.New("password mismatch")
)

// Verifier checks an email/password pair against the user store. All
// expected failures come back as one of the sentinel errors above; it never
// reveals more than the caller should surface.
type Verifier struct {
	store store.Store
}

func NewVerifier(s store.Store) *Verifier {
	return &Verifier{store: s}
}

func (v *Verifier) Verify(ctx context.Context, email, password string) (*auth.User, error) {
	user, err := v.store.FindByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, ErrNoPassword
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrMismatch
	}

	return user, nil
}
