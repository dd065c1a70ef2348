package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()

	users := newMockUserRepo()
	hash, err := auth.HashPassword("correct-horse", 4)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Username:     "bob",
		PasswordHash: hash,
		FullName:     "Bob Technician",
		Role:         domain.RoleTechnician,
		Active:       true,
	}))

	tokens := auth.NewTokenManager("test-secret", 60)
	return NewAuthService(users, tokens), users
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, token, expiresAt, err := svc.Login(context.Background(), "bob", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "bob", user.Username)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	// The issued token round-trips through the manager.
	tokens := auth.NewTokenManager("test-secret", 60)
	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
	require.Equal(t, domain.RoleTechnician, claims.Role)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, _, err := svc.Login(context.Background(), "bob", "wrong")
	requireCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.Login(context.Background(), "nobody", "correct-horse")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	svc, users := newTestAuthService(t)

	bob, err := users.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	bob.Active = false
	require.NoError(t, users.Update(context.Background(), bob))

	_, _, _, err = svc.Login(context.Background(), "bob", "correct-horse")
	requireCode(t, err, "UNAUTHORIZED")
}
