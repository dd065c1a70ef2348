package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hvac-service-desk/internal/config"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/events"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// DeadlineService owns the deadline rules: the default deadline stamped at
// creation, the extension workflow, and the derived risk indicator.
type DeadlineService struct {
	requests   repository.RequestRepository
	workflow   config.WorkflowConfig
	dispatcher events.Dispatcher
}

// NewDeadlineService constructs the service.
func NewDeadlineService(requests repository.RequestRepository, workflow config.WorkflowConfig, dispatcher events.Dispatcher) *DeadlineService {
	return &DeadlineService{requests: requests, workflow: workflow, dispatcher: dispatcher}
}

// DefaultDeadline computes the planned deadline for a request created at the
// given instant.
func (s *DeadlineService) DefaultDeadline(createdAt time.Time) time.Time {
	return s.workflow.DefaultDeadline(createdAt)
}

// RiskState derives the deadline proximity indicator for a request as of now.
func (s *DeadlineService) RiskState(request *domain.Request) domain.RiskState {
	return request.RiskState(time.Now())
}

// ExtendDeadline records an approved extension: the new deadline, the
// justification, the client approval note, the approval timestamp and the
// extending user move together in a single update. A later extension
// overwrites an earlier one.
func (s *DeadlineService) ExtendDeadline(ctx context.Context, actor domain.Actor, requestID int64, newDeadline time.Time, reason, approval string) (*domain.Request, error) {
	if !actor.CanManageQuality() {
		return nil, apperrors.NewForbidden("only an administrator or quality manager may extend deadlines")
	}

	reason = strings.TrimSpace(reason)
	approval = strings.TrimSpace(approval)
	if reason == "" {
		return nil, apperrors.NewInvalidArgument("extension reason is required", nil)
	}
	if approval == "" {
		return nil, apperrors.NewInvalidArgument("client approval is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	approvedAt := time.Now()
	if err := s.requests.ExtendDeadline(ctx, requestID, newDeadline, reason, approval, approvedAt, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	request.ExtendedDeadline = &newDeadline
	request.ExtensionReason = &reason
	request.ClientApproval = &approval
	request.ClientApprovalAt = &approvedAt
	request.ExtendedBy = &actor.ID

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDeadlineExtended,
			RequestID: requestID,
			Actor:     events.Actor{UserID: &actor.ID, Role: actor.Role},
			Timestamp: time.Now(),
			Payload: events.DeadlineExtendedPayload{
				NewDeadline: newDeadline,
				Reason:      reason,
			},
		})
	}
	return request, nil
}
