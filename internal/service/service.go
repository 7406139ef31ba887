package service

import (
	"context"

	"github.com/campushub/event-registration/internal/entity"
)

// AuthService is the identity context: it turns credentials into a signed
// token and a token back into a resolved Identity. Nothing below the
// transport layer ever sees a raw credential.
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*entity.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Verify(token string) (*entity.Identity, error)
}

// EventService owns the event catalog.
type EventService interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error)
	GetEvent(ctx context.Context, id string) (*entity.EventWithAvailability, error)
	GetAllEvents(ctx context.Context) ([]*entity.EventWithAvailability, error)
	UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// RegistrationService is the registration engine. It enforces uniqueness,
// capacity and ownership; it trusts the caller identity it is given and
// applies no read-authorization policy of its own.
type RegistrationService interface {
	Register(ctx context.Context, studentID, eventID string) (*entity.Registration, error)
	Cancel(ctx context.Context, callerID, registrationID string) error
	ListForStudent(ctx context.Context, studentID string) ([]*entity.Registration, error)
	ListAll(ctx context.Context, rng *entity.DateRange) ([]*entity.Registration, error)
}

// RegistrationQueries is the access-scoped query layer: the single place
// where read authorization is decided. Role mismatches fail before any
// ledger access.
type RegistrationQueries interface {
	ListOwn(ctx context.Context, caller entity.Identity) ([]*entity.Registration, error)
	ListAll(ctx context.Context, caller entity.Identity, rng *entity.DateRange) ([]*entity.Registration, error)
	ListAudit(ctx context.Context, caller entity.Identity, limit int) ([]*entity.AuditRecord, error)
}

// AuditPublisher pushes ledger mutations onto the audit stream. Publishing
// is best-effort: a broker outage never fails the mutation itself.
type AuditPublisher interface {
	Publish(ctx context.Context, record *entity.AuditRecord) error
}

// CacheInvalidator drops cached catalog entries after a mutation changes
// an event or its registration count.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, eventID string) error
}
