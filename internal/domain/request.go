package domain

import "time"

// RequestStatus enumerates lifecycle states for repair requests.
type RequestStatus string

const (
	RequestStatusOpen          RequestStatus = "open"
	RequestStatusInRepair      RequestStatus = "in_repair"
	RequestStatusAwaitingParts RequestStatus = "awaiting_parts"
	RequestStatusCompleted     RequestStatus = "completed"
)

// Valid reports whether the status is one of the known values. The
// transition graph itself is unrestricted: any state is reachable from any
// other, including reopening a completed request.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusInRepair, RequestStatusAwaitingParts, RequestStatusCompleted:
		return true
	}
	return false
}

// RiskState is a derived, non-persisted deadline proximity indicator.
type RiskState string

const (
	RiskNone    RiskState = ""
	RiskOnTrack RiskState = "on_track"
	RiskAtRisk  RiskState = "at_risk"
	RiskOverdue RiskState = "overdue"
)

// atRiskWindow is how close to the effective deadline a request may get
// before it is flagged at_risk.
const atRiskWindow = 24 * time.Hour

// Request is the central repair-ticket aggregate.
type Request struct {
	ID        int64
	Number    string
	CreatedAt time.Time

	EquipmentType      string
	DeviceModel        string
	FaultType          string
	ProblemDescription string

	CustomerName  string
	CustomerPhone string

	Status RequestStatus

	AssignedTo  *int64
	AssistantID *int64

	EstimatedCost float64
	ActualCost    *float64

	Deadline         *time.Time
	ExtendedDeadline *time.Time
	ExtensionReason  *string
	ClientApproval   *string
	ClientApprovalAt *time.Time
	ExtendedBy       *int64

	CompletedAt *time.Time

	// Joined read-view fields, resolved from users.
	AssignedName   *string
	AssistantName  *string
	ExtendedByName *string
}

// EffectiveDeadline returns the extended deadline when one exists,
// otherwise the planned deadline. May be nil.
func (r *Request) EffectiveDeadline() *time.Time {
	if r.ExtendedDeadline != nil {
		return r.ExtendedDeadline
	}
	return r.Deadline
}

// RiskState derives the deadline indicator at the given instant. Completed
// requests and requests without an effective deadline carry no signal.
func (r *Request) RiskState(now time.Time) RiskState {
	if r.Status == RequestStatusCompleted {
		return RiskNone
	}
	deadline := r.EffectiveDeadline()
	if deadline == nil {
		return RiskNone
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return RiskOverdue
	}
	if remaining <= atRiskWindow {
		return RiskAtRisk
	}
	return RiskOnTrack
}
