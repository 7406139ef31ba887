package service

import (
	"context"

	repository "github.com/campushub/event-registration/internal/database/postgres"
	"github.com/campushub/event-registration/internal/entity"
)

// registrationQueries restricts which ledger records a caller may read.
// The role check runs before any repository call; the engine underneath
// stays policy-agnostic.
type registrationQueries struct {
	engine RegistrationService
	audit  repository.AuditRepository
}

func NewRegistrationQueries(engine RegistrationService, audit repository.AuditRepository) RegistrationQueries {
	return &registrationQueries{engine: engine, audit: audit}
}

// ListOwn returns the caller's own registrations. The student id is taken
// from the verified identity, never from request input, so a student cannot
// list anyone else's records by construction.
func (q *registrationQueries) ListOwn(ctx context.Context, caller entity.Identity) ([]*entity.Registration, error) {
	if caller.Role != entity.RoleStudent {
		return nil, entity.ErrForbidden
	}
	return q.engine.ListForStudent(ctx, caller.SubjectID)
}

func (q *registrationQueries) ListAll(ctx context.Context, caller entity.Identity, rng *entity.DateRange) ([]*entity.Registration, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, entity.ErrForbidden
	}
	return q.engine.ListAll(ctx, rng)
}

func (q *registrationQueries) ListAudit(ctx context.Context, caller entity.Identity, limit int) ([]*entity.AuditRecord, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, entity.ErrForbidden
	}
	return q.audit.GetRecent(ctx, limit)
}
