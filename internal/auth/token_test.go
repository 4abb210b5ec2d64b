package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key-at-all"))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}

	return token
}

func TestDecodeToken_ReadsClaims(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":   "auth0|abc123",
		"email": "alice@example.com",
		"name":  "Alice Smith",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := DecodeToken(token)

	require.NoError(t, err)
	assert.Equal(t, "auth0|abc123", identity.ExternalID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice Smith", identity.Username)
}

func TestDecodeToken_SignatureIsNotChecked(t *testing.T) {
	// Tokens are verified upstream by the identity provider; this service
	// only decodes. A token signed with an unknown key must still decode.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "auth0|unverified",
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	identity, err := DecodeToken(token)

	require.NoError(t, err)
	assert.Equal(t, "auth0|unverified", identity.ExternalID)
}

func TestDecodeToken_UsernameFallbacks(t *testing.T) {
	preferred := signToken(t, jwt.MapClaims{
		"sub":                "auth0|1",
		"preferred_username": "asmith",
	})

	identity, err := DecodeToken(preferred)
	require.NoError(t, err)
	assert.Equal(t, "asmith", identity.Username)

	emailOnly := signToken(t, jwt.MapClaims{
		"sub":   "auth0|2",
		"email": "bob@example.com",
	})

	identity, err = DecodeToken(emailOnly)
	require.NoError(t, err)
	assert.Equal(t, "bob", identity.Username)
}

func TestDecodeToken_Expired(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "auth0|abc123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := DecodeToken(token)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestDecodeToken_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"email": "ghost@example.com",
	})

	_, err := DecodeToken(token)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub")
}

func TestDecodeToken_Garbage(t *testing.T) {
	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := DecodeToken(input)
		assert.Error(t, err, "input %q", input)
	}
}
