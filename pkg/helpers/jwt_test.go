package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := NewJWTManager("secret", 30*time.Minute)

	token, exp, err := m.GenerateAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), exp, time.Minute)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
}

func TestParseAccessTokenExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", 30*time.Minute).WithClock(func() time.Time { return issued })

	token, _, err := m.GenerateAccessToken(42)
	require.NoError(t, err)

	// Still valid just before expiry.
	m.WithClock(func() time.Time { return issued.Add(29 * time.Minute) })
	_, err = m.ParseAccessToken(token)
	require.NoError(t, err)

	m.WithClock(func() time.Time { return issued.Add(31 * time.Minute) })
	_, err = m.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("secret", 30*time.Minute)
	token, _, err := m.GenerateAccessToken(42)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token + "x")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTManager("different", 30*time.Minute)
	_, err = other.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
