package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth/credentials"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all fields"})
		return
	}

	user, err := h.verifier.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		// NotFound and Mismatch share one message so a probe cannot tell
		// which half of the pair was wrong.
		case errors.Is(err, credentials.ErrNotFound), errors.Is(err, credentials.ErrMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect email or password."})
		case errors.Is(err, credentials.ErrNoPassword):
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "You registered using a social account. Please log in with that method or set a password.",
			})
		default:
			log.Error().Err(err).Msg("login: verification failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		}
		return
	}

	tok, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("login: token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user, tok))
}
