package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/resolver"
)

// oauthStart redirects the browser to the provider's consent screen. The
// caller's redirect intent rides along in the state parameter; the PKCE
// verifier is ferried in a short-lived cookie until the callback.
func (h *Handler) oauthStart(name auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := h.providers.Get(name)
		if err != nil {
			h.loginErrorRedirect(c, string(name)+"_oauth_failed")
			return
		}

		state := h.redirects.Encode(c.Query("redirect"))

		verifier := oauth2.GenerateVerifier()
		setPKCECookie(c, verifier)
		challenge := oauth2.S256ChallengeFromVerifier(verifier)

		c.Redirect(http.StatusFound, p.AuthCodeURL(state, challenge))
	}
}

// oauthCallback finishes the dance: code exchange, identity resolution,
// token issuance, and the final hand-off redirect to the client app. Every
// failure path lands the browser back on the login page with an error code.
func (h *Handler) oauthCallback(name auth.Provider) gin.HandlerFunc {
	failureCode := string(name) + "_oauth_failed"

	return func(c *gin.Context) {
		// Decoded exactly once here; re-encoded once for the hand-off below.
		redirectPath := h.redirects.Decode(c.Query("state"))

		if errParam := c.Query("error"); errParam != "" {
			log.Warn().
				Str("provider", string(name)).
				Str("error", errParam).
				Str("description", c.Query("error_description")).
				Msg("oauth callback returned error")
			h.loginErrorRedirect(c, failureCode)
			return
		}

		code := c.Query("code")
		if code == "" {
			log.Error().Str("provider", string(name)).Msg("oauth callback missing code and error")
			h.loginErrorRedirect(c, failureCode)
			return
		}

		p, err := h.providers.Get(name)
		if err != nil {
			h.loginErrorRedirect(c, failureCode)
			return
		}

		ctx := c.Request.Context()

		assertion, err := p.Exchange(ctx, code, takePKCEVerifier(c))
		if err != nil {
			log.Warn().Err(err).Str("provider", string(name)).Msg("oauth exchange failed")
			h.loginErrorRedirect(c, failureCode)
			return
		}

		user, err := h.resolver.Resolve(ctx, assertion)
		if err != nil {
			if errors.Is(err, resolver.ErrMissingEmail) {
				h.loginErrorRedirect(c, missingEmailMessage(name))
				return
			}
			log.Error().Err(err).Str("provider", string(name)).Msg("oauth identity resolution failed")
			h.loginErrorRedirect(c, failureCode)
			return
		}

		tok, err := h.tokens.Issue(user.ID)
		if err != nil {
			log.Error().Err(err).Msg("oauth: token issue failed")
			h.loginErrorRedirect(c, failureCode)
			return
		}

		q := url.Values{}
		q.Set("token", tok)
		q.Set("redirect", redirectPath)
		c.Redirect(http.StatusFound, h.clientURL+"/auth/callback?"+q.Encode())
	}
}

func missingEmailMessage(name auth.Provider) string {
	if name == auth.ProviderGitHub {
		return "GitHub profile does not have a public email. Please add one or use another login method."
	}
	return "Your " + string(name) + " profile did not provide a verified email. Please use another login method."
}
