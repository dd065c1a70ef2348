package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.userSvc.CreateUser(context.Background(), env.admin, CreateUserInput{
		Username: "newtech",
		Password: "s3cret-pass",
		FullName: "Eve Technician",
		Role:     domain.RoleTechnician,
	})
	require.NoError(t, err)
	require.True(t, user.Active)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestUserService_CreateUser_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userSvc.CreateUser(context.Background(), env.qm, CreateUserInput{
		Username: "x",
		Password: "y",
		FullName: "z",
		Role:     domain.RoleTechnician,
	})
	requireCode(t, err, "FORBIDDEN")
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userSvc.CreateUser(context.Background(), env.admin, CreateUserInput{
		Username: "tech1",
		Password: "whatever1",
		FullName: "Imposter",
		Role:     domain.RoleTechnician,
	})
	requireCode(t, err, "CONFLICT")
}

func TestUserService_CreateUser_UnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userSvc.CreateUser(context.Background(), env.admin, CreateUserInput{
		Username: "weird",
		Password: "whatever1",
		FullName: "Weird Role",
		Role:     domain.Role("janitor"),
	})
	requireCode(t, err, "INVALID_ARGUMENT")
}

func TestUserService_ListUsers_Gating(t *testing.T) {
	env := newTestEnv(t)

	all, err := env.userSvc.ListUsers(context.Background(), env.admin, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)

	techRole := domain.RoleTechnician
	technicians, err := env.userSvc.ListUsers(context.Background(), env.qm, &techRole)
	require.NoError(t, err)
	require.Len(t, technicians, 2)

	_, err = env.userSvc.ListUsers(context.Background(), env.qm, nil)
	requireCode(t, err, "FORBIDDEN")

	_, err = env.userSvc.ListUsers(context.Background(), env.tech, &techRole)
	requireCode(t, err, "FORBIDDEN")
}

func TestUserService_SetActive(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.userSvc.SetActive(context.Background(), env.admin, env.tech.ID, false)
	require.NoError(t, err)
	require.False(t, user.Active)

	// Deactivated accounts drop out of the listing.
	all, err := env.userSvc.ListUsers(context.Background(), env.admin, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = env.userSvc.SetActive(context.Background(), env.admin, env.admin.ID, false)
	requireCode(t, err, "INVALID_ARGUMENT")

	_, err = env.userSvc.SetActive(context.Background(), env.qm, env.tech.ID, true)
	requireCode(t, err, "FORBIDDEN")
}

func TestUserService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.userSvc.EnsureAdmin(context.Background(), "boot", "bootpass1", "Boot Admin"))

	created, err := env.users.GetByUsername(context.Background(), "boot")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, created.Role)

	// Idempotent on re-run and a no-op without credentials.
	require.NoError(t, env.userSvc.EnsureAdmin(context.Background(), "boot", "bootpass1", "Boot Admin"))
	require.NoError(t, env.userSvc.EnsureAdmin(context.Background(), "", "", ""))

	all, err := env.userSvc.ListUsers(context.Background(), env.admin, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
}
