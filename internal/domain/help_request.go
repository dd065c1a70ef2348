package domain

import "time"

// HelpRequestStatus enumerates escalation states.
type HelpRequestStatus string

const (
	HelpRequestOpen     HelpRequestStatus = "open"
	HelpRequestResolved HelpRequestStatus = "resolved"
)

// HelpRequest is a technician's escalation on a stuck request. Several may
// be open against the same request at once.
type HelpRequest struct {
	ID             int64
	RequestID      int64
	RequestedBy    int64
	Message        string
	Status         HelpRequestStatus
	CreatedAt      time.Time
	ResolvedBy     *int64
	ResolvedAt     *time.Time
	ResolutionNote *string
}

// OpenHelpRequest is the quality-manager queue view: an open escalation
// joined with the current state of its request.
type OpenHelpRequest struct {
	HelpID    int64
	RequestID int64
	Message   string
	CreatedAt time.Time

	RequestNumber    string
	RequestStatus    RequestStatus
	Deadline         *time.Time
	ExtendedDeadline *time.Time

	AssignedTo    *int64
	AssignedName  *string
	AssistantID   *int64
	AssistantName *string

	RequestedBy     int64
	RequestedByName string
}
