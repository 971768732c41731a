package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("session-1")
	require.NoError(t, err)

	id, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestTokenIssuer_Rejections(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("session-1")
	require.NoError(t, err)

	other, err := NewTokenIssuer("another", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	parts := strings.Split(token, ".")
	parts[1] = strings.Repeat("A", len(parts[1]))
	_, err = issuer.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken, "tampered payload")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "session-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken, "unsigned token")

	_, err = issuer.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken, "empty token")
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)
	now := time.Now()
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue("session-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RandomSecret(t *testing.T) {
	a, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("session-1")
	require.NoError(t, err)
	_, err = a.Validate(token)
	assert.NoError(t, err)
	_, err = b.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
