package repository

import (
	"context"

	"github.com/campushub/event-registration/internal/entity"
)

// RegistrationRepository is the registration ledger. It is mutated only by
// the registration service; every other component reads it at most.
type RegistrationRepository interface {
	// Create performs the full check-then-insert sequence (event exists,
	// no duplicate, capacity not exceeded, insert) as one atomic unit.
	Create(ctx context.Context, studentID, eventID string) (*entity.Registration, error)
	GetByID(ctx context.Context, id string) (*entity.Registration, error)
	Delete(ctx context.Context, id string) error

	GetByStudentID(ctx context.Context, studentID string) ([]*entity.Registration, error)
	GetAll(ctx context.Context, rng *entity.DateRange) ([]*entity.Registration, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.EventWithAvailability, error)
	GetAll(ctx context.Context) ([]*entity.EventWithAvailability, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	GetRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error)
}
