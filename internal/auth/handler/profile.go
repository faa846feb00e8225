package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irahuldutta02/go-google-github-auth/internal/middleware"
)

// Profile returns the authenticated user's record. The middleware has
// already verified the token and loaded the user.
func (h *Handler) Profile(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"avatarUrl": user.AvatarURL,
		"createdAt": user.CreatedAt,
	})
}
