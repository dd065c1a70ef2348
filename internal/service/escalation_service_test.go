package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

func TestEscalationService_Open(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	help, err := env.escalationSvc.Open(context.Background(), env.tech, request.ID, "cannot source the control board")
	require.NoError(t, err)
	require.Equal(t, domain.HelpRequestOpen, help.Status)
	require.Equal(t, env.tech.ID, help.RequestedBy)
	require.NotZero(t, help.ID)
}

func TestEscalationService_Open_OnlyAssignedTechnician(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	_, err := env.escalationSvc.Open(context.Background(), env.tech2, request.ID, "stuck")
	requireCode(t, err, "FORBIDDEN")

	unassigned := env.seedRequest(t, nil)
	_, err = env.escalationSvc.Open(context.Background(), env.tech, unassigned.ID, "stuck")
	requireCode(t, err, "FORBIDDEN")
}

func TestEscalationService_Open_CompletedRejected(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)
	_, err := env.lifecycleSvc.SetStatus(context.Background(), env.tech, request.ID, domain.RequestStatusCompleted)
	require.NoError(t, err)

	_, err = env.escalationSvc.Open(context.Background(), env.tech, request.ID, "too late")
	requireCode(t, err, "INVALID_STATE")
}

func TestEscalationService_Open_EmptyMessage(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	_, err := env.escalationSvc.Open(context.Background(), env.tech, request.ID, "   ")
	requireCode(t, err, "INVALID_ARGUMENT")
}

func TestEscalationService_QueueAndResolve(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	first, err := env.escalationSvc.Open(context.Background(), env.tech, request.ID, "missing parts")
	require.NoError(t, err)
	second, err := env.escalationSvc.Open(context.Background(), env.tech, request.ID, "customer unreachable")
	require.NoError(t, err)

	queue, err := env.escalationSvc.ListOpen(context.Background(), env.qm)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, request.Number, queue[0].RequestNumber)
	require.Equal(t, "Bob Technician", queue[0].RequestedByName)

	resolved, err := env.escalationSvc.Resolve(context.Background(), env.qm, first.ID, "ordered from another supplier")
	require.NoError(t, err)
	require.Equal(t, domain.HelpRequestResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	require.Equal(t, env.qm.ID, *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolutionNote)

	queue, err = env.escalationSvc.ListOpen(context.Background(), env.qm)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, second.ID, queue[0].HelpID)
}

func TestEscalationService_Resolve_TwiceInvalidState(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	help, err := env.escalationSvc.Open(context.Background(), env.tech, request.ID, "stuck")
	require.NoError(t, err)

	_, err = env.escalationSvc.Resolve(context.Background(), env.qm, help.ID, "done")
	require.NoError(t, err)

	_, err = env.escalationSvc.Resolve(context.Background(), env.qm, help.ID, "again")
	requireCode(t, err, "INVALID_STATE")
}

func TestEscalationService_QueueForbiddenForTechnician(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.escalationSvc.ListOpen(context.Background(), env.tech)
	requireCode(t, err, "FORBIDDEN")

	_, err = env.escalationSvc.Resolve(context.Background(), env.tech, 1, "")
	requireCode(t, err, "FORBIDDEN")
}

func TestEscalationService_RemediationByQualityManager(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	// Quality managers may reassign through the escalation surface even
	// though direct assignment stays admin-only.
	updated, err := env.escalationSvc.ReassignTechnician(context.Background(), env.qm, request.ID, env.tech2.ID)
	require.NoError(t, err)
	require.Equal(t, env.tech2.ID, *updated.AssignedTo)

	updated, err = env.escalationSvc.AttachAssistant(context.Background(), env.qm, request.ID, env.tech.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssistantID)
	require.Equal(t, env.tech.ID, *updated.AssistantID)
}

func TestEscalationService_RemediationForbiddenForTechnician(t *testing.T) {
	env := newTestEnv(t)
	request := env.seedRequest(t, &env.tech.ID)

	_, err := env.escalationSvc.ReassignTechnician(context.Background(), env.tech, request.ID, env.tech2.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = env.escalationSvc.AttachAssistant(context.Background(), env.tech, request.ID, env.tech2.ID)
	requireCode(t, err, "FORBIDDEN")
}
