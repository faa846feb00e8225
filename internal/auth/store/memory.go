package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
)

// Memory is a map-backed Store with the same uniqueness guarantees as the
// Postgres schema. It backs tests and DSN-less development runs.
type Memory struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[uuid.UUID]*auth.User)}
}

func (m *Memory) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByProviderID(ctx context.Context, provider auth.Provider, providerID string) (*auth.User, error) {
	// An empty id must not match records whose provider id is unset.
	if providerID == "" {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ProviderID(provider) == providerID {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Create(ctx context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts(user) {
		return ErrDuplicate
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *Memory) Save(ctx context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	if m.conflicts(user) {
		return ErrDuplicate
	}

	user.UpdatedAt = time.Now()
	m.users[user.ID] = copyUser(user)
	return nil
}

// conflicts reports whether another record already claims the user's email or
// any of its provider ids. Callers hold the lock.
func (m *Memory) conflicts(user *auth.User) bool {
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) {
			return true
		}
		if user.GoogleID != "" && u.GoogleID == user.GoogleID {
			return true
		}
		if user.GitHubID != "" && u.GitHubID == user.GitHubID {
			return true
		}
	}
	return false
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	return &c
}
