package entity

import "time"

type AuditAction string

const (
	AuditActionRegister AuditAction = "register"
	AuditActionCancel   AuditAction = "cancel"
)

// AuditRecord is the durable trace of a mutation to the registration
// ledger. ActorID is the authenticated subject that performed the action;
// for the current scope it always equals StudentID, but the two are kept
// separate so an administrative path can be told apart from an owner action.
type AuditRecord struct {
	ID             string      `json:"id" db:"id"`
	Action         AuditAction `json:"action" db:"action"`
	RegistrationID string      `json:"registration_id" db:"registration_id"`
	StudentID      string      `json:"student_id" db:"student_id"`
	EventID        string      `json:"event_id" db:"event_id"`
	ActorID        string      `json:"actor_id" db:"actor_id"`
	OccurredAt     time.Time   `json:"occurred_at" db:"occurred_at"`
}
