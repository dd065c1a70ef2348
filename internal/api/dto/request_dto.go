package dto

import (
	"time"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// CreateRequestPayload is the intake form.
type CreateRequestPayload struct {
	EquipmentType      string  `json:"equipment_type" validate:"required"`
	DeviceModel        string  `json:"device_model"`
	FaultType          string  `json:"fault_type"`
	ProblemDescription string  `json:"problem_description"`
	CustomerName       string  `json:"customer_name" validate:"required"`
	CustomerPhone      string  `json:"customer_phone"`
	EstimatedCost      float64 `json:"estimated_cost" validate:"gte=0"`
}

// UpdateRequestPayload carries partial edits to the descriptive fields.
type UpdateRequestPayload struct {
	EquipmentType      *string    `json:"equipment_type,omitempty"`
	DeviceModel        *string    `json:"device_model,omitempty"`
	FaultType          *string    `json:"fault_type,omitempty"`
	ProblemDescription *string    `json:"problem_description,omitempty"`
	CustomerName       *string    `json:"customer_name,omitempty"`
	CustomerPhone      *string    `json:"customer_phone,omitempty"`
	EstimatedCost      *float64   `json:"estimated_cost,omitempty" validate:"omitempty,gte=0"`
	ActualCost         *float64   `json:"actual_cost,omitempty" validate:"omitempty,gte=0"`
	Deadline           *time.Time `json:"deadline,omitempty"`
}

// SetStatusPayload moves a request to a new lifecycle state.
type SetStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// AssignPayload names the technician to attach.
type AssignPayload struct {
	TechnicianID int64 `json:"technician_id" validate:"required,gt=0"`
}

// ExtendDeadlinePayload records an approved deadline extension.
type ExtendDeadlinePayload struct {
	NewDeadline    time.Time `json:"new_deadline" validate:"required"`
	Reason         string    `json:"reason" validate:"required"`
	ClientApproval string    `json:"client_approval" validate:"required"`
}

// CreateCommentPayload appends to the work log.
type CreateCommentPayload struct {
	Body             string `json:"body"`
	PartsOrdered     bool   `json:"parts_ordered"`
	PartsDescription string `json:"parts_description"`
}

// RequestResponse is the full request view returned by every request
// endpoint. Risk and the effective deadline are derived at render time.
type RequestResponse struct {
	ID                 int64                `json:"id"`
	Number             string               `json:"number"`
	CreatedAt          time.Time            `json:"created_at"`
	EquipmentType      string               `json:"equipment_type"`
	DeviceModel        string               `json:"device_model,omitempty"`
	FaultType          string               `json:"fault_type,omitempty"`
	ProblemDescription string               `json:"problem_description,omitempty"`
	CustomerName       string               `json:"customer_name"`
	CustomerPhone      string               `json:"customer_phone,omitempty"`
	Status             domain.RequestStatus `json:"status"`
	AssignedTo         *int64               `json:"assigned_to,omitempty"`
	AssignedName       *string              `json:"assigned_name,omitempty"`
	AssistantID        *int64               `json:"assistant_id,omitempty"`
	AssistantName      *string              `json:"assistant_name,omitempty"`
	EstimatedCost      float64              `json:"estimated_cost"`
	ActualCost         *float64             `json:"actual_cost,omitempty"`
	Deadline           *time.Time           `json:"deadline,omitempty"`
	ExtendedDeadline   *time.Time           `json:"extended_deadline,omitempty"`
	EffectiveDeadline  *time.Time           `json:"effective_deadline,omitempty"`
	ExtensionReason    *string              `json:"extension_reason,omitempty"`
	ClientApproval     *string              `json:"client_approval,omitempty"`
	ClientApprovalAt   *time.Time           `json:"client_approval_at,omitempty"`
	ExtendedBy         *int64               `json:"extended_by,omitempty"`
	ExtendedByName     *string              `json:"extended_by_name,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	Risk               domain.RiskState     `json:"risk,omitempty"`
}

// StatusHistoryResponse is one audit-trail entry.
type StatusHistoryResponse struct {
	ID            int64                 `json:"id"`
	OldStatus     *domain.RequestStatus `json:"old_status,omitempty"`
	NewStatus     domain.RequestStatus  `json:"new_status"`
	ChangedBy     *int64                `json:"changed_by,omitempty"`
	ChangedByName *string               `json:"changed_by_name,omitempty"`
	ChangedAt     time.Time             `json:"changed_at"`
}

// CommentResponse is one work-log entry.
type CommentResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	AuthorName       *string   `json:"author_name,omitempty"`
	Body             string    `json:"body"`
	PartsOrdered     bool      `json:"parts_ordered"`
	PartsDescription string    `json:"parts_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// EquipmentTypeResponse is one reference-catalog row.
type EquipmentTypeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
