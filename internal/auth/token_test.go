package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-secret", 15)

	token, expiresAt, err := tm.GenerateToken(42, domain.RoleQualityManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, domain.RoleQualityManager, claims.Role)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 15)
	other := NewTokenManager("secret-b", 15)

	token, _, err := tm.GenerateToken(1, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pa55word!", 4)
	require.NoError(t, err)
	require.NotEqual(t, "pa55word!", hash)

	require.NoError(t, ComparePassword(hash, "pa55word!"))
	require.Error(t, ComparePassword(hash, "different"))
}
