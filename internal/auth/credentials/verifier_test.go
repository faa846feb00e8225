package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irahuldutta02/go-google-github-auth/internal/auth"
	"github.com/irahuldutta02/go-google-github-auth/internal/auth/store"
)

func seedPasswordUser(t *testing.T, s store.Store, email, password string) *auth.User {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NotEqual(t, password, hash)

	user := &auth.User{
		Name:         "Ada",
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, s.Create(context.Background(), user))
	return user
}

func TestVerifySuccess(t *testing.T) {
	s := store.NewMemory()
	seeded := seedPasswordUser(t, s, "ada@x.com", "secret123")

	v := NewVerifier(s)
	user, err := v.Verify(context.Background(), "ada@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestVerifyEmailCaseInsensitive(t *testing.T) {
	s := store.NewMemory()
	seeded := seedPasswordUser(t, s, "ada@x.com", "secret123")

	v := NewVerifier(s)
	user, err := v.Verify(context.Background(), "ADA@X.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestVerifyMismatch(t *testing.T) {
	s := store.NewMemory()
	seedPasswordUser(t, s, "ada@x.com", "secret123")

	v := NewVerifier(s)
	_, err := v.Verify(context.Background(), "ada@x.com", "wrong")
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerifyUnknownEmail(t *testing.T) {
	v := NewVerifier(store.NewMemory())
	_, err := v.Verify(context.Background(), "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyOAuthOnlyAccount(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Create(context.Background(), &auth.User{
		Name:     "Grace",
		Email:    "grace@x.com",
		GoogleID: "google-123",
	}))

	v := NewVerifier(s)
	_, err := v.Verify(context.Background(), "grace@x.com", "anything")
	assert.ErrorIs(t, err, ErrNoPassword)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
