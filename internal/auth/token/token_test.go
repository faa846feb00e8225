package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes-only"

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret, 30*24*time.Hour)
	subject := uuid.New()

	tok, err := issuer.Issue(subject)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	clock := now
	issuer := NewIssuer(testSecret, time.Hour).WithClock(func() time.Time { return clock })

	tok, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	// Still valid just before the deadline.
	clock = now.Add(59 * time.Minute)
	_, err = issuer.Verify(tok)
	require.NoError(t, err)

	clock = now.Add(61 * time.Minute)
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyBadSignature(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	other := NewIssuer("a-completely-different-secret", time.Hour)

	tok, err := other.Issue(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerifyNonUUIDSubject(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)

	claims := jwt.RegisteredClaims{Subject: uuid.NewString()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.Error(t, err)
}
