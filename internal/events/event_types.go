package events

import (
	"time"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
	EventDeadlineExtended     EventType = "deadline_extended"
	EventHelpRequested        EventType = "help_requested"
	EventHelpResolved         EventType = "help_resolved"
)

// Actor encapsulates actor metadata for an event. A nil UserID marks a
// system-initiated change.
type Actor struct {
	UserID *int64      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID int64       `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Number        string     `json:"number"`
	EquipmentType string     `json:"equipment_type"`
	CustomerName  string     `json:"customer_name"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	TechnicianID int64 `json:"technician_id"`
	Assistant    bool  `json:"assistant"`
}

// DeadlineExtendedPayload payload.
type DeadlineExtendedPayload struct {
	NewDeadline time.Time `json:"new_deadline"`
	Reason      string    `json:"reason"`
}

// HelpRequestedPayload payload.
type HelpRequestedPayload struct {
	HelpID  int64  `json:"help_id"`
	Message string `json:"message"`
}

// HelpResolvedPayload payload.
type HelpResolvedPayload struct {
	HelpID int64  `json:"help_id"`
	Note   string `json:"note,omitempty"`
}
