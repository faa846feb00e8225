package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/credentials"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/provider"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/redirect"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/resolver"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/token"
)

type Handler struct {
	providers *provider.Registry
	store     store.Store
	verifier  *credentials.Verifier
	resolver  resolver.Resolver
	tokens    *token.Issuer
	redirects *redirect.Carrier
	clientURL string
}

func NewHandler(
	registry *provider.Registry,
	s store.Store,
	verifier *credentials.Verifier,
	res resolver.Resolver,
	tokens *token.Issuer,
	redirects *redirect.Carrier,
	clientURL string,
) *Handler {
	return &Handler{
		providers: registry,
		store:     s,
		verifier:  verifier,
		resolver:  res,
		tokens:    tokens,
		redirects: redirects,
		clientURL: clientURL,
	}
}

// RegisterRoutes mounts the auth surface under /api/auth. The profile route
// sits behind the bearer-token middleware supplied by the caller.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	api := r.Group("/api/auth")

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	api.GET("/google", h.oauthStart(auth.ProviderGoogle))
	api.GET("/google/callback", h.oauthCallback(auth.ProviderGoogle))
	api.GET("/github", h.oauthStart(auth.ProviderGitHub))
	api.GET("/github/callback", h.oauthCallback(auth.ProviderGitHub))

	api.GET("/profile", requireAuth, h.Profile)
}

// userResponse is the body returned by register, login, and the OAuth
// callback hand-off. Token is present only when a fresh one was issued.
func userResponse(u *auth.User, tok string) gin.H {
	body := gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"avatarUrl": u.AvatarURL,
	}
	if tok != "" {
		body["token"] = tok
	}
	return body
}

// loginErrorRedirect sends the browser back to the client login page with a
// machine-readable error. OAuth failures are never surfaced as JSON: the
// caller is mid-redirect and could not render it.
func (h *Handler) loginErrorRedirect(c *gin.Context, message string) {
	q := url.Values{}
	q.Set("error", message)
	c.Redirect(302, h.clientURL+"/login?"+q.Encode())
}
