package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/credentials"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all fields"})
		return
	}

	email := strings.ToLower(req.Email)
	ctx := c.Request.Context()

	if _, err := h.store.FindByEmail(ctx, email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("register: email lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("register: password hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
	}

	if err := h.store.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		log.Error().Err(err).Msg("register: create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	tok, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("register: token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	c.JSON(http.StatusCreated, userResponse(user, tok))
}
