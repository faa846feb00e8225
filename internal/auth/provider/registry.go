package provider

import (
	"fmt"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
)

// Registry holds the configured OAuth providers keyed by name. It performs
// no auth logic itself.
type Registry struct {
	providers map[auth.Provider]OAuthProvider
}

func NewRegistry(list ...OAuthProvider) *Registry {
	m := make(map[auth.Provider]OAuthProvider)
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Get(name auth.Provider) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return p, nil
}
