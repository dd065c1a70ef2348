package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/events"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// EscalationService covers the help workflow: technicians raise escalations
// on stuck requests, quality managers work the open queue and resolve them,
// applying remediation (reassignment, an assistant, a deadline extension)
// along the way.
type EscalationService struct {
	helps      repository.HelpRequestRepository
	requests   repository.RequestRepository
	lifecycle  *LifecycleService
	deadlines  *DeadlineService
	dispatcher events.Dispatcher
}

// NewEscalationService constructs the service.
func NewEscalationService(
	helps repository.HelpRequestRepository,
	requests repository.RequestRepository,
	lifecycle *LifecycleService,
	deadlines *DeadlineService,
	dispatcher events.Dispatcher,
) *EscalationService {
	return &EscalationService{
		helps:      helps,
		requests:   requests,
		lifecycle:  lifecycle,
		deadlines:  deadlines,
		dispatcher: dispatcher,
	}
}

// Open raises an escalation against a request. Only the assigned technician
// may ask for help, and only while the request is not completed. Multiple
// open escalations against the same request are allowed.
func (s *EscalationService) Open(ctx context.Context, actor domain.Actor, requestID int64, message string) (*domain.HelpRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewInvalidArgument("help message is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.Status == domain.RequestStatusCompleted {
		return nil, apperrors.NewInvalidState("cannot request help on a completed request", nil)
	}
	if request.AssignedTo == nil || *request.AssignedTo != actor.ID {
		return nil, apperrors.NewForbidden("only the assigned technician may request help")
	}

	help := &domain.HelpRequest{
		RequestID:   requestID,
		RequestedBy: actor.ID,
		Message:     message,
		Status:      domain.HelpRequestOpen,
	}
	if err := s.helps.Create(ctx, help); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventHelpRequested, actor, requestID, events.HelpRequestedPayload{
		HelpID:  help.ID,
		Message: message,
	})
	return help, nil
}

// ListOpen returns the quality-manager queue: every open escalation joined
// with the current state of its request, newest first.
func (s *EscalationService) ListOpen(ctx context.Context, actor domain.Actor) ([]domain.OpenHelpRequest, error) {
	if !actor.CanManageQuality() {
		return nil, apperrors.NewForbidden("only an administrator or quality manager may view the escalation queue")
	}
	queue, err := s.helps.ListOpen(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return queue, nil
}

// Resolve closes an open escalation with an optional note. Resolving an
// escalation does not touch the underlying request; remediation is applied
// separately through the dedicated operations.
func (s *EscalationService) Resolve(ctx context.Context, actor domain.Actor, helpID int64, note string) (*domain.HelpRequest, error) {
	if !actor.CanManageQuality() {
		return nil, apperrors.NewForbidden("only an administrator or quality manager may resolve escalations")
	}

	help, err := s.helps.GetByID(ctx, helpID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("help request", map[string]any{"id": helpID})
		}
		return nil, apperrors.MapError(err)
	}
	if help.Status == domain.HelpRequestResolved {
		return nil, apperrors.NewInvalidState("help request is already resolved", map[string]any{"id": helpID})
	}

	note = strings.TrimSpace(note)
	resolvedAt := time.Now()
	if err := s.helps.Resolve(ctx, helpID, actor.ID, note, resolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race with another resolver.
			return nil, apperrors.NewInvalidState("help request is already resolved", map[string]any{"id": helpID})
		}
		return nil, apperrors.MapError(err)
	}

	help.Status = domain.HelpRequestResolved
	help.ResolvedBy = &actor.ID
	help.ResolvedAt = &resolvedAt
	if note != "" {
		help.ResolutionNote = &note
	}

	s.publish(ctx, events.EventHelpResolved, actor, help.RequestID, events.HelpResolvedPayload{
		HelpID: helpID,
		Note:   note,
	})
	return help, nil
}

// ReassignTechnician replaces the primary technician as a remediation step.
// Quality managers get this path in addition to administrators.
func (s *EscalationService) ReassignTechnician(ctx context.Context, actor domain.Actor, requestID, technicianID int64) (*domain.Request, error) {
	if !actor.CanManageQuality() {
		return nil, apperrors.NewForbidden("only an administrator or quality manager may reassign technicians")
	}
	return s.lifecycle.assign(ctx, actor, requestID, technicianID, false)
}

// AttachAssistant adds an assisting technician as a remediation step.
func (s *EscalationService) AttachAssistant(ctx context.Context, actor domain.Actor, requestID, technicianID int64) (*domain.Request, error) {
	if !actor.CanManageQuality() {
		return nil, apperrors.NewForbidden("only an administrator or quality manager may attach assistants")
	}
	return s.lifecycle.assign(ctx, actor, requestID, technicianID, true)
}

// ExtendDeadline grants a deadline extension as a remediation step.
func (s *EscalationService) ExtendDeadline(ctx context.Context, actor domain.Actor, requestID int64, newDeadline time.Time, reason, approval string) (*domain.Request, error) {
	return s.deadlines.ExtendDeadline(ctx, actor, requestID, newDeadline, reason, approval)
}

func (s *EscalationService) publish(ctx context.Context, eventType events.EventType, actor domain.Actor, requestID int64, payload interface{}) {
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
