package dto

import (
	"time"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// CreateHelpPayload raises an escalation.
type CreateHelpPayload struct {
	Message string `json:"message" validate:"required"`
}

// ResolveHelpPayload closes an escalation with an optional note.
type ResolveHelpPayload struct {
	Note string `json:"note"`
}

// HelpRequestResponse is one escalation record.
type HelpRequestResponse struct {
	ID             int64                    `json:"id"`
	RequestID      int64                    `json:"request_id"`
	RequestedBy    int64                    `json:"requested_by"`
	Message        string                   `json:"message"`
	Status         domain.HelpRequestStatus `json:"status"`
	CreatedAt      time.Time                `json:"created_at"`
	ResolvedBy     *int64                   `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time               `json:"resolved_at,omitempty"`
	ResolutionNote *string                  `json:"resolution_note,omitempty"`
}

// OpenHelpResponse is one row of the quality-manager queue: the escalation
// joined with the current state of its request.
type OpenHelpResponse struct {
	HelpID    int64     `json:"help_id"`
	RequestID int64     `json:"request_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	RequestNumber     string               `json:"request_number"`
	RequestStatus     domain.RequestStatus `json:"request_status"`
	Deadline          *time.Time           `json:"deadline,omitempty"`
	ExtendedDeadline  *time.Time           `json:"extended_deadline,omitempty"`
	EffectiveDeadline *time.Time           `json:"effective_deadline,omitempty"`

	AssignedTo    *int64  `json:"assigned_to,omitempty"`
	AssignedName  *string `json:"assigned_name,omitempty"`
	AssistantID   *int64  `json:"assistant_id,omitempty"`
	AssistantName *string `json:"assistant_name,omitempty"`

	RequestedBy     int64  `json:"requested_by"`
	RequestedByName string `json:"requested_by_name"`
}
