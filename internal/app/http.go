package app

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth/credentials"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/handler"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/provider"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/provider/github"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/provider/google"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/redirect"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/resolver"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/token"
	"github.com/irahuldutta02/go-google-github-auth/internal/config"
	"github.com/irahuldutta02/go-google-github-auth/internal/middleware"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	registry := provider.NewRegistry(setupProviders(ctx, cfg)...)
	verifier := credentials.NewVerifier(infra.Store)
	identityResolver := resolver.NewStoreResolver(infra.Store)
	tokens := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	redirects := redirect.NewCarrier(redirect.DefaultPath)

	authHandler := handler.NewHandler(
		registry,
		infra.Store,
		verifier,
		identityResolver,
		tokens,
		redirects,
		cfg.ClientURL,
	)

	authMiddleware := middleware.NewAuthMiddleware(tokens, infra.Store)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router, middleware.GinRequireAuth(authMiddleware))

	return router, infra.cleanup, nil
}

// setupProviders initializes only the providers whose credentials are
// configured, so a dev setup can run with a single provider or none.
func setupProviders(ctx context.Context, cfg config.Config) []provider.OAuthProvider {
	var list []provider.OAuthProvider

	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("google provider init failed, skipping")
		} else {
			list = append(list, googleProvider)
			log.Info().Msg("google oauth provider initialized")
		}
	}

	if cfg.GitHubClientID != "" {
		githubProvider, err := github.New(
			cfg.GitHubClientID,
			cfg.GitHubClientSecret,
			cfg.GitHubCallbackURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("github provider init failed, skipping")
		} else {
			list = append(list, githubProvider)
			log.Info().Msg("github oauth provider initialized")
		}
	}

	return list
}
