package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeadlineService_DefaultDeadline(t *testing.T) {
	env := newTestEnv(t)

	createdAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	deadline := env.deadlineSvc.DefaultDeadline(createdAt)
	require.Equal(t, createdAt.Add(72*time.Hour), deadline)
}

func TestDeadlineService_Extend(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	newDeadline := time.Now().Add(7 * 24 * time.Hour)
	updated, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.qm, request.ID, newDeadline, "waiting on compressor", "approved by phone")
	require.NoError(t, err)

	require.NotNil(t, updated.ExtendedDeadline)
	require.Equal(t, newDeadline, *updated.ExtendedDeadline)
	require.NotNil(t, updated.ExtensionReason)
	require.Equal(t, "waiting on compressor", *updated.ExtensionReason)
	require.NotNil(t, updated.ClientApproval)
	require.NotNil(t, updated.ClientApprovalAt)
	require.NotNil(t, updated.ExtendedBy)
	require.Equal(t, env.qm.ID, *updated.ExtendedBy)

	// The effective deadline switches to the extension; the planned one stays.
	require.Equal(t, newDeadline, *updated.EffectiveDeadline())
	require.NotNil(t, updated.Deadline)
}

func TestDeadlineService_Extend_OverwritesPrevious(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	first := time.Now().Add(5 * 24 * time.Hour)
	_, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.qm, request.ID, first, "parts delayed", "ok")
	require.NoError(t, err)

	second := time.Now().Add(10 * 24 * time.Hour)
	updated, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.admin, request.ID, second, "supplier changed", "ok again")
	require.NoError(t, err)

	require.Equal(t, second, *updated.ExtendedDeadline)
	require.Equal(t, "supplier changed", *updated.ExtensionReason)
	require.Equal(t, env.admin.ID, *updated.ExtendedBy)
}

func TestDeadlineService_Extend_RequiresReasonAndApproval(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)
	newDeadline := time.Now().Add(7 * 24 * time.Hour)

	_, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.qm, request.ID, newDeadline, "  ", "approved")
	requireCode(t, err, "INVALID_ARGUMENT")

	_, err = env.deadlineSvc.ExtendDeadline(context.Background(), env.qm, request.ID, newDeadline, "reason", "")
	requireCode(t, err, "INVALID_ARGUMENT")

	// Nothing may have been written.
	stored, err := env.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Nil(t, stored.ExtendedDeadline)
	require.Nil(t, stored.ExtensionReason)
	require.Nil(t, stored.ClientApproval)
	require.Nil(t, stored.ClientApprovalAt)
	require.Nil(t, stored.ExtendedBy)
}

func TestDeadlineService_Extend_TechnicianForbidden(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	_, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.tech, request.ID, time.Now().Add(24*time.Hour), "reason", "approval")
	requireCode(t, err, "FORBIDDEN")
}

func TestDeadlineService_Extend_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.deadlineSvc.ExtendDeadline(context.Background(), env.qm, 12345, time.Now().Add(24*time.Hour), "reason", "approval")
	requireCode(t, err, "NOT_FOUND")
}
