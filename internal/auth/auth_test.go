package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", true, "secret", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.True(t, claims.Admin)

	_, err = ValidateJWT(token, "other-secret")
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("user-1", false, "secret", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(token, "secret")
	require.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "alice@example.com", hash)
	require.True(t, CheckPasswordHash("alice@example.com", hash))
	require.False(t, CheckPasswordHash("bob@example.com", hash))
}
