package domain

import "time"

// StatusHistoryEntry is an immutable audit record appended atomically with
// every status change. The creation entry carries a nil old status; a nil
// actor marks a system-initiated change.
type StatusHistoryEntry struct {
	ID        int64
	RequestID int64
	OldStatus *RequestStatus
	NewStatus RequestStatus
	ChangedBy *int64
	ChangedAt time.Time

	ChangedByName *string
}
