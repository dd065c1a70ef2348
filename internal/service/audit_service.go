package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hvac-service-desk/internal/events"
)

// AuditService subscribes to every domain event and writes a structured log
// line, giving operators a trail of who did what to which request.
type AuditService struct {
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(logger *zap.Logger) *AuditService {
	return &AuditService{logger: logger}
}

// RegisterHandlers attaches the audit handler to all event types.
func (s *AuditService) RegisterHandlers(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventRequestCreated,
		events.EventRequestStatusChanged,
		events.EventRequestAssigned,
		events.EventDeadlineExtended,
		events.EventHelpRequested,
		events.EventHelpResolved,
	} {
		dispatcher.Subscribe(eventType, s.handle)
	}
}

func (s *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("request_id", event.RequestID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	}
	if event.Actor.UserID != nil {
		fields = append(fields,
			zap.Int64("actor_id", *event.Actor.UserID),
			zap.String("actor_role", string(event.Actor.Role)),
		)
	}
	s.logger.Info("audit", fields...)
	return nil
}
