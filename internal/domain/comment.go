package domain

import "time"

// Comment is an append-only note on a request. Body may be empty when the
// parts flag carries the content instead.
type Comment struct {
	ID               int64
	RequestID        int64
	UserID           int64
	Body             string
	PartsOrdered     bool
	PartsDescription string
	CreatedAt        time.Time

	AuthorName     *string
	AuthorUsername *string
}
