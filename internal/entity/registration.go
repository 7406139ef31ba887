package entity

import (
	"time"
)

// Registration is one student's claim on one event. Records are immutable
// once created; cancellation deletes them outright.
//
// The JSON field names (id, studentId, eventId, registeredAt) are part of
// the external contract; admin and reporting tooling depends on them.
type Registration struct {
	ID           string    `json:"id" db:"id"`
	StudentID    string    `json:"studentId" db:"student_id"`
	EventID      string    `json:"eventId" db:"event_id"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}

// DateRange bounds a listAll query on registered_at. Both bounds are
// inclusive and must be supplied together.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate enforces the both-or-neither rule and start <= end.
func (r *DateRange) Validate() error {
	if r == nil {
		return nil
	}
	if r.Start.IsZero() != r.End.IsZero() {
		return ErrInvalidDateRange
	}
	if r.Start.After(r.End) {
		return ErrInvalidDateRange
	}
	return nil
}
