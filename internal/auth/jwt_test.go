package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "boxing-arena-api", "boxing-arena-clients", time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager()
	token, err := m.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := newTestManager().ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongAudienceOrSecret(t *testing.T) {
	other := NewTokenManager("test-secret", "boxing-arena-api", "someone-else", time.Hour)
	token, err := other.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	_, err = newTestManager().ValidateToken(token)
	require.ErrorContains(t, err, "audience")

	forged := NewTokenManager("other-secret", "boxing-arena-api", "boxing-arena-clients", time.Hour)
	token, err = forged.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	_, err = newTestManager().ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	_, err = newTestManager().ValidateToken(token)
	require.Error(t, err)
}
