package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, CompareHashAndPassword(hash, "password123"))
	require.False(t, CompareHashAndPassword(hash, "password124"))
	require.False(t, CompareHashAndPassword("", "password123"))
}

func TestGenerateTokenIsRandomAndURLSafe(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NotContains(t, a, "+")
	require.NotContains(t, a, "/")
	require.NotContains(t, a, "=")
}
