package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/token"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey).(*auth.User)
	return u, ok
}

type AuthMiddleware struct {
	Tokens *token.Issuer
	Store  store.Store
}

func NewAuthMiddleware(tokens *token.Issuer, s store.Store) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens, Store: s}
}

// RequireAuth gates a handler behind a bearer token. The token proves the
// subject id; the user record is re-fetched so a deleted account is rejected
// even while its token is still within its lifetime.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			unauthorized(w, "Not authorized, no token")
			return
		}

		userID, err := a.Tokens.Verify(raw)
		if err != nil {
			unauthorized(w, "Not authorized, token failed")
			return
		}

		user, err := a.Store.FindByID(r.Context(), userID)
		if err != nil {
			unauthorized(w, "Not authorized, user not found")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
