package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hvac-service-desk/internal/config"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/events"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// testEnv wires the services over the in-memory repositories with a shared
// set of staff accounts.
type testEnv struct {
	requests  *mockRequestRepo
	users     *mockUserRepo
	helps     *mockHelpRepo
	comments  *mockCommentRepo
	equipment *mockEquipmentRepo

	requestSvc    *RequestService
	lifecycleSvc  *LifecycleService
	deadlineSvc   *DeadlineService
	escalationSvc *EscalationService
	userSvc       *UserService

	admin domain.Actor
	tech  domain.Actor
	tech2 domain.Actor
	qm    domain.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		requests:  newMockRequestRepo(),
		users:     newMockUserRepo(),
		comments:  newMockCommentRepo(),
		equipment: newMockEquipmentRepo(),
	}
	env.helps = newMockHelpRepo(env.requests, env.users)

	workflow := config.WorkflowConfig{
		RequestNumberPrefix: "REQ",
		DeadlineDefaultDays: 3,
	}
	dispatcher := events.NewInMemoryDispatcher()

	env.requestSvc = NewRequestService(env.requests, env.comments, env.requests, env.equipment, workflow, dispatcher)
	env.lifecycleSvc = NewLifecycleService(env.requests, env.users, dispatcher)
	env.deadlineSvc = NewDeadlineService(env.requests, workflow, dispatcher)
	env.escalationSvc = NewEscalationService(env.helps, env.requests, env.lifecycleSvc, env.deadlineSvc, dispatcher)
	env.userSvc = NewUserService(env.users, 4, nil)

	env.admin = env.seedUser(t, "admin", "Alice Admin", domain.RoleAdmin)
	env.tech = env.seedUser(t, "tech1", "Bob Technician", domain.RoleTechnician)
	env.tech2 = env.seedUser(t, "tech2", "Carol Technician", domain.RoleTechnician)
	env.qm = env.seedUser(t, "qm1", "Dana Manager", domain.RoleQualityManager)

	return env
}

func (e *testEnv) seedUser(t *testing.T, username, fullName string, role domain.Role) domain.Actor {
	t.Helper()

	user := &domain.User{
		Username:     username,
		PasswordHash: "x",
		FullName:     fullName,
		Role:         role,
		Active:       true,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return domain.Actor{ID: user.ID, Role: role}
}

func (e *testEnv) seedRequest(t *testing.T, assignedTo *int64) *domain.Request {
	t.Helper()

	deadline := time.Now().Add(72 * time.Hour)
	request := &domain.Request{
		Number:        fmt.Sprintf("REQ%s%04d", time.Now().Format("20060102"), atomic.AddInt64(&seededNumbers, 1)),
		EquipmentType: "Air conditioner",
		CustomerName:  "Customer",
		Status:        domain.RequestStatusOpen,
		Deadline:      &deadline,
	}
	require.NoError(t, e.requests.Create(context.Background(), request))

	if assignedTo != nil {
		require.NoError(t, e.requests.Assign(context.Background(), request.ID, *assignedTo))
		request.AssignedTo = assignedTo
	}
	return request
}

var seededNumbers int64

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.IsCode(err, code), "expected %s, got %v", code, err)
}
