package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

// The verifier cookie is the only server-side state the OAuth hop needs. It
// exists for the duration of the redirect dance and carries nothing about
// the application session.
func setPKCECookie(c *gin.Context, verifier string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     pkceCookieName,
		Value:    verifier,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(pkceTTL.Seconds()),
	})
}

// takePKCEVerifier reads the verifier and expires the cookie.
func takePKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     pkceCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	if err != nil {
		return ""
	}
	return cookie.Value
}
