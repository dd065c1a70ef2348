package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/events"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// LifecycleService drives request status transitions and assignment. All
// permission checks live here rather than in the HTTP layer, so every entry
// point takes the acting user.
type LifecycleService struct {
	requests   repository.RequestRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewLifecycleService constructs the service.
func NewLifecycleService(requests repository.RequestRepository, users repository.UserRepository, dispatcher events.Dispatcher) *LifecycleService {
	return &LifecycleService{requests: requests, users: users, dispatcher: dispatcher}
}

// SetStatus moves a request to a new lifecycle state. Any known state is
// reachable from any other, including reopening a completed request.
// Permitted to admins and to the request's assigned technician; the
// assistant may not change status.
func (s *LifecycleService) SetStatus(ctx context.Context, actor domain.Actor, requestID int64, newStatus domain.RequestStatus) (*domain.Request, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidArgument("unknown status", map[string]any{"status": string(newStatus)})
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	if !s.mayChangeStatus(actor, request) {
		return nil, apperrors.NewForbidden("only an administrator or the assigned technician may change status")
	}

	oldStatus := request.Status

	// completed_at mirrors the status: stamped when the request completes,
	// cleared again on any transition away from completed. The original
	// completion time is not preserved across a reopen.
	var completedAt *time.Time
	if newStatus == domain.RequestStatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	if err := s.requests.SetStatus(ctx, requestID, newStatus, completedAt, &actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	request.Status = newStatus
	request.CompletedAt = completedAt

	s.publish(ctx, events.EventRequestStatusChanged, actor, requestID, events.RequestStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return request, nil
}

// Assign sets the primary technician. Admin only; reassignment replaces the
// previous technician without clearing the assistant.
func (s *LifecycleService) Assign(ctx context.Context, actor domain.Actor, requestID, technicianID int64) (*domain.Request, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only an administrator may assign technicians")
	}
	return s.assign(ctx, actor, requestID, technicianID, false)
}

// SetAssistant sets the assisting technician. Admin only. The assistant is a
// plain association: it grants no status-change rights.
func (s *LifecycleService) SetAssistant(ctx context.Context, actor domain.Actor, requestID, technicianID int64) (*domain.Request, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only an administrator may assign assistants")
	}
	return s.assign(ctx, actor, requestID, technicianID, true)
}

// Claim lets a technician take an unassigned, non-completed request.
func (s *LifecycleService) Claim(ctx context.Context, actor domain.Actor, requestID int64) (*domain.Request, error) {
	if actor.Role != domain.RoleTechnician {
		return nil, apperrors.NewForbidden("only technicians may claim requests")
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.Status == domain.RequestStatusCompleted {
		return nil, apperrors.NewInvalidState("completed requests cannot be claimed", nil)
	}
	if request.AssignedTo != nil {
		return nil, apperrors.NewInvalidState("request already has an assigned technician", map[string]any{
			"assigned_to": *request.AssignedTo,
		})
	}

	if err := s.requests.Assign(ctx, requestID, actor.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	request.AssignedTo = &actor.ID

	s.publish(ctx, events.EventRequestAssigned, actor, requestID, events.RequestAssignedPayload{
		TechnicianID: actor.ID,
		Assistant:    false,
	})
	return request, nil
}

// assign performs the shared validation and write behind Assign and
// SetAssistant. Role gating happens in the callers: the escalation service
// reuses this path under its own quality-manager gate.
func (s *LifecycleService) assign(ctx context.Context, actor domain.Actor, requestID, technicianID int64, assistant bool) (*domain.Request, error) {
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician || !technician.Active {
		return nil, apperrors.NewInvalidArgument("assignee must be an active technician", map[string]any{
			"id": technicianID,
		})
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	if assistant {
		err = s.requests.SetAssistant(ctx, requestID, technicianID)
	} else {
		err = s.requests.Assign(ctx, requestID, technicianID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	if assistant {
		request.AssistantID = &technicianID
		request.AssistantName = &technician.FullName
	} else {
		request.AssignedTo = &technicianID
		request.AssignedName = &technician.FullName
	}

	s.publish(ctx, events.EventRequestAssigned, actor, requestID, events.RequestAssignedPayload{
		TechnicianID: technicianID,
		Assistant:    assistant,
	})
	return request, nil
}

func (s *LifecycleService) mayChangeStatus(actor domain.Actor, request *domain.Request) bool {
	if actor.IsAdmin() {
		return true
	}
	return request.AssignedTo != nil && *request.AssignedTo == actor.ID
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, actor domain.Actor, requestID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RequestID: requestID,
		Actor:     events.Actor{UserID: &actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
