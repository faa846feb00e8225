package provider

import (
	"context"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
)

// OAuthProvider is the contract every external provider implements.
// Implementations return identity facts only and must not perform user
// creation, linking, or token issuance.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "github").
	Name() auth.Provider

	// AuthCodeURL returns the provider's authorization URL. The state value
	// is the caller's encoded redirect intent and is reflected back
	// verbatim by the provider.
	AuthCodeURL(state string, codeChallenge string) string

	// Exchange trades the authorization code for provider credentials and
	// returns a normalized assertion. No auth decisions are made here.
	Exchange(ctx context.Context, code string, codeVerifier string) (*auth.Assertion, error)
}
