package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
)

// StoreResolver resolves assertions against the user store with this
// precedence:
//
//  1. provider id already linked  -> plain login, record untouched
//  2. email matches a local user  -> link the provider id onto that record
//  3. otherwise                   -> create a new OAuth-only account
//
// Linking by email trusts the provider's email assertion; the providers in
// this repo only forward verified addresses.
type StoreResolver struct {
	store store.Store
}

func NewStoreResolver(s store.Store) *StoreResolver {
	return &StoreResolver{store: s}
}

func (r *StoreResolver) Resolve(ctx context.Context, assertion *auth.Assertion) (*auth.User, error) {
	if assertion == nil || assertion.Subject == "" {
		return nil, errors.New("assertion is empty")
	}
	if assertion.Email == "" {
		return nil, ErrMissingEmail
	}

	user, err := r.resolve(ctx, assertion)
	if errors.Is(err, store.ErrDuplicate) {
		// Two callbacks raced to create the same identity. The loser
		// re-runs the lookup path once; the record now exists.
		log.Warn().
			Str("provider", string(assertion.Provider)).
			Msg("uniqueness race on user creation, retrying lookup")
		user, err = r.resolve(ctx, assertion)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *StoreResolver) resolve(ctx context.Context, assertion *auth.Assertion) (*auth.User, error) {
	// 1. Provider id already linked.
	user, err := r.store.FindByProviderID(ctx, assertion.Provider, assertion.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup by provider id: %w", err)
	}

	email := strings.ToLower(assertion.Email)

	// 2. Same email, different login method: link onto the existing record.
	// Existing profile fields win; the assertion only fills gaps.
	user, err = r.store.FindByEmail(ctx, email)
	if err == nil {
		user.SetProviderID(assertion.Provider, assertion.Subject)
		if user.Name == "" {
			user.Name = assertion.Name
		}
		if user.AvatarURL == "" {
			user.AvatarURL = assertion.AvatarURL
		}
		if err := r.store.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("link provider: %w", err)
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	// 3. First contact: new OAuth-only account, no password hash.
	user = &auth.User{
		Name:      assertion.Name,
		Email:     email,
		AvatarURL: assertion.AvatarURL,
	}
	user.SetProviderID(assertion.Provider, assertion.Subject)

	if err := r.store.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
