package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/campushub/event-registration/internal/database/postgres"
	"github.com/campushub/event-registration/internal/entity"
)

type registrationService struct {
	registrations repository.RegistrationRepository
	audit         AuditPublisher
	cache         CacheInvalidator
}

// NewRegistrationService wires the engine. audit and cache may be nil;
// both are optional side channels, never part of the invariant path.
func NewRegistrationService(
	registrations repository.RegistrationRepository,
	audit AuditPublisher,
	cache CacheInvalidator,
) RegistrationService {
	return &registrationService{
		registrations: registrations,
		audit:         audit,
		cache:         cache,
	}
}

// Register creates a registration for (studentID, eventID). The existence,
// uniqueness and capacity checks run atomically inside the ledger (a
// per-event row lock held across check-then-insert), so under concurrent
// calls at most maxCapacity succeed and the rest get a definitive conflict.
func (s *registrationService) Register(ctx context.Context, studentID, eventID string) (*entity.Registration, error) {
	reg, err := s.registrations.Create(ctx, studentID, eventID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": reg.ID,
		"student_id":      reg.StudentID,
		"event_id":        reg.EventID,
	}).Info("registration created")

	s.publishAudit(ctx, entity.AuditActionRegister, reg, studentID)
	s.invalidate(ctx, eventID)

	return reg, nil
}

// Cancel deletes the registration if and only if the caller owns it.
// Deletion is destructive; the freed capacity unit is visible to the next
// Register immediately because counts are always derived from the ledger.
func (s *registrationService) Cancel(ctx context.Context, callerID, registrationID string) error {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg.StudentID != callerID {
		return entity.ErrForbidden
	}

	if err := s.registrations.Delete(ctx, registrationID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": registrationID,
		"student_id":      reg.StudentID,
		"event_id":        reg.EventID,
	}).Info("registration cancelled")

	s.publishAudit(ctx, entity.AuditActionCancel, reg, callerID)
	s.invalidate(ctx, reg.EventID)

	return nil
}

func (s *registrationService) ListForStudent(ctx context.Context, studentID string) ([]*entity.Registration, error) {
	return s.registrations.GetByStudentID(ctx, studentID)
}

func (s *registrationService) ListAll(ctx context.Context, rng *entity.DateRange) ([]*entity.Registration, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.registrations.GetAll(ctx, rng)
}

func (s *registrationService) publishAudit(ctx context.Context, action entity.AuditAction, reg *entity.Registration, actorID string) {
	if s.audit == nil {
		return
	}
	record := &entity.AuditRecord{
		ID:             uuid.NewString(),
		Action:         action,
		RegistrationID: reg.ID,
		StudentID:      reg.StudentID,
		EventID:        reg.EventID,
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.audit.Publish(ctx, record); err != nil {
		logrus.WithError(err).WithField("registration_id", reg.ID).
			Warn("failed to publish audit record")
	}
}

func (s *registrationService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logrus.WithError(err).WithField("event_id", eventID).
			Warn("failed to invalidate event cache")
	}
}
