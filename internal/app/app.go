// Package app wires configuration, storage, the OAuth providers, and the
// HTTP surface into one runnable server.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/irahuldutta02/go-google-github-auth/internal/config"
)

// App owns the HTTP server and every resource acquired while building it.
// Shutdown releases those resources in reverse acquisition order.
type App struct {
	server   *http.Server
	cleanups []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		server: &http.Server{
			Addr:              net.JoinHostPort("", cfg.AppPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if cleanup != nil {
		a.cleanups = append(a.cleanups, cleanup)
	}
	return a, nil
}

// Addr is the listen address the server binds to.
func (a *App) Addr() string {
	return a.server.Addr
}

// Run serves until the listener fails or Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (a *App) Run() error {
	return a.server.ListenAndServe()
}

// Shutdown drains in-flight requests within the context's deadline, then
// runs the cleanups. All errors along the way are reported together.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		err = errors.Join(err, a.cleanups[i]())
	}
	return err
}
