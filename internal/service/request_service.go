package service

import (
	"context"
	"errors"
	"fmt"
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

// RequestService handles request intake, lookup, edits to descriptive
// fields, comments and history reads.
type RequestService struct {
	requests   repository.RequestRepository
	comments   repository.CommentRepository
	history    repository.StatusHistoryRepository
	equipment  repository.EquipmentTypeRepository
	workflow   config.WorkflowConfig
	dispatcher events.Dispatcher
}

// NewRequestService constructs the service.
func NewRequestService(
	requests repository.RequestRepository,
	comments repository.CommentRepository,
	history repository.StatusHistoryRepository,
	equipment repository.EquipmentTypeRepository,
	workflow config.WorkflowConfig,
	dispatcher events.Dispatcher,
) *RequestService {
	return &RequestService{
		requests:   requests,
		comments:   comments,
		history:    history,
		equipment:  equipment,
		workflow:   workflow,
		dispatcher: dispatcher,
	}
}

// CreateRequestInput carries the intake form.
type CreateRequestInput struct {
	EquipmentType      string
	DeviceModel        string
	FaultType          string
	ProblemDescription string
	CustomerName       string
	CustomerPhone      string
	EstimatedCost      float64
}

// UpdateRequestInput whitelists the editable descriptive fields. Status,
// assignment, history and the extension group have their own operations.
type UpdateRequestInput struct {
	EquipmentType      *string
	DeviceModel        *string
	FaultType          *string
	ProblemDescription *string
	CustomerName       *string
	CustomerPhone      *string
	EstimatedCost      *float64
	ActualCost         *float64
	Deadline           *time.Time
}

// Create registers a new repair request: assigns the next sequential number
// for today, stamps the default deadline, stores the request in the open
// state and writes the initial history entry in the same transaction.
// Concurrent same-day creations may collide on the number's uniqueness
// constraint; that surfaces as a CONFLICT the caller retries.
func (s *RequestService) Create(ctx context.Context, actor domain.Actor, input CreateRequestInput) (*domain.Request, error) {
	if strings.TrimSpace(input.EquipmentType) == "" {
		return nil, apperrors.NewInvalidArgument("equipment type is required", nil)
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, apperrors.NewInvalidArgument("customer name is required", nil)
	}

	now := time.Now()
	number, err := s.nextNumber(ctx, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	deadline := s.workflow.DefaultDeadline(now)

	request := &domain.Request{
		Number:             number,
		EquipmentType:      strings.TrimSpace(input.EquipmentType),
		DeviceModel:        strings.TrimSpace(input.DeviceModel),
		FaultType:          strings.TrimSpace(input.FaultType),
		ProblemDescription: strings.TrimSpace(input.ProblemDescription),
		CustomerName:       strings.TrimSpace(input.CustomerName),
		CustomerPhone:      strings.TrimSpace(input.CustomerPhone),
		Status:             domain.RequestStatusOpen,
		EstimatedCost:      input.EstimatedCost,
		Deadline:           &deadline,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRequestCreated,
			RequestID: request.ID,
			Actor:     events.Actor{UserID: &actor.ID, Role: actor.Role},
			Timestamp: time.Now(),
			Payload: events.RequestCreatedPayload{
				Number:        request.Number,
				EquipmentType: request.EquipmentType,
				CustomerName:  request.CustomerName,
				Deadline:      request.Deadline,
			},
		})
	}
	return request, nil
}

// nextNumber builds the next request number for the given day:
// prefix + YYYYMMDD + zero-padded per-day sequence starting at 1.
func (s *RequestService) nextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := s.workflow.RequestNumberPrefix
	if prefix == "" {
		prefix = "REQ"
	}
	dayPrefix := prefix + now.Format("20060102")

	count, err := s.requests.CountByNumberPrefix(ctx, dayPrefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", dayPrefix, count+1), nil
}

// Get returns a request with its joined assignee names.
func (s *RequestService) Get(ctx context.Context, requestID int64) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

// List returns requests matching the filter, newest first.
func (s *RequestService) List(ctx context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewInvalidArgument("unknown status", map[string]any{"status": string(*filter.Status)})
	}
	result, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Update edits the descriptive fields of a request. Open to any
// authenticated staff member.
func (s *RequestService) Update(ctx context.Context, actor domain.Actor, requestID int64, input UpdateRequestInput) (*domain.Request, error) {
	update := repository.RequestUpdate{
		EquipmentType:      input.EquipmentType,
		DeviceModel:        input.DeviceModel,
		FaultType:          input.FaultType,
		ProblemDescription: input.ProblemDescription,
		CustomerName:       input.CustomerName,
		CustomerPhone:      input.CustomerPhone,
		EstimatedCost:      input.EstimatedCost,
		ActualCost:         input.ActualCost,
		Deadline:           input.Deadline,
	}
	if update.EquipmentType != nil && strings.TrimSpace(*update.EquipmentType) == "" {
		return nil, apperrors.NewInvalidArgument("equipment type cannot be empty", nil)
	}
	if update.CustomerName != nil && strings.TrimSpace(*update.CustomerName) == "" {
		return nil, apperrors.NewInvalidArgument("customer name cannot be empty", nil)
	}

	if err := s.requests.UpdateFields(ctx, requestID, update); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, requestID)
}

// AddComment appends a work-log comment. The body may be empty only when
// the comment records a parts order with a description.
func (s *RequestService) AddComment(ctx context.Context, actor domain.Actor, requestID int64, body string, partsOrdered bool, partsDescription string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	partsDescription = strings.TrimSpace(partsDescription)
	if body == "" && !(partsOrdered && partsDescription != "") {
		return nil, apperrors.NewInvalidArgument("comment body is required", nil)
	}

	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		RequestID:        requestID,
		UserID:           actor.ID,
		Body:             body,
		PartsOrdered:     partsOrdered,
		PartsDescription: partsDescription,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// ListComments returns the comment log for a request, newest first.
func (s *RequestService) ListComments(ctx context.Context, requestID int64) ([]domain.Comment, error) {
	result, err := s.comments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListHistory returns the status audit trail for a request, newest first.
func (s *RequestService) ListHistory(ctx context.Context, requestID int64) ([]domain.StatusHistoryEntry, error) {
	result, err := s.history.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListEquipmentTypes returns the seeded reference catalog.
func (s *RequestService) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	result, err := s.equipment.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
