package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/event-registration/internal/entity"
)

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Create registers a student for an event inside a single transaction.
//
// The naive count-then-insert is a TOCTOU race: two transactions can both
// observe count < max_capacity and both insert. The event row is therefore
// locked with SELECT ... FOR UPDATE before the duplicate and capacity
// checks, which serialises concurrent registrations per event; the unique
// index on (student_id, event_id) is a second line of defense.
func (r *registrationRepository) Create(ctx context.Context, studentID, eventID string) (*entity.Registration, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	var maxCapacity int
	err = tx.QueryRowContext(ctx,
		`SELECT max_capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&maxCapacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, storageErr("lock event row", err)
	}

	var duplicates int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE student_id = $1 AND event_id = $2`,
		studentID, eventID,
	).Scan(&duplicates)
	if err != nil {
		return nil, storageErr("check existing registration", err)
	}
	if duplicates > 0 {
		return nil, entity.ErrAlreadyRegistered
	}

	var registered int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&registered)
	if err != nil {
		return nil, storageErr("count registrations", err)
	}
	if registered >= maxCapacity {
		return nil, entity.ErrEventFull
	}

	reg := &entity.Registration{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		EventID:      eventID,
		RegisteredAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (id, student_id, event_id, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.StudentID, reg.EventID, reg.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrAlreadyRegistered
		}
		return nil, storageErr("insert registration", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*entity.Registration, error) {
	var reg entity.Registration
	err := r.db.QueryRowContext(ctx,
		`SELECT id, student_id, event_id, registered_at
		 FROM registrations WHERE id = $1`,
		id,
	).Scan(&reg.ID, &reg.StudentID, &reg.EventID, &reg.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, storageErr("get registration", err)
	}
	return &reg, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete registration", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if affected == 0 {
		return entity.ErrRegistrationNotFound
	}
	return nil
}

func (r *registrationRepository) GetByStudentID(ctx context.Context, studentID string) ([]*entity.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, event_id, registered_at
		 FROM registrations
		 WHERE student_id = $1
		 ORDER BY registered_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, storageErr("query registrations by student", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *registrationRepository) GetAll(ctx context.Context, rng *entity.DateRange) ([]*entity.Registration, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if rng != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, student_id, event_id, registered_at
			 FROM registrations
			 WHERE registered_at BETWEEN $1 AND $2
			 ORDER BY registered_at DESC`,
			rng.Start, rng.End,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, student_id, event_id, registered_at
			 FROM registrations
			 ORDER BY registered_at DESC`,
		)
	}
	if err != nil {
		return nil, storageErr("query all registrations", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

func (r *registrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, storageErr("count registrations by event", err)
	}
	return count, nil
}

func scanRegistrations(rows *sql.Rows) ([]*entity.Registration, error) {
	regs := make([]*entity.Registration, 0)
	for rows.Next() {
		var reg entity.Registration
		if err := rows.Scan(&reg.ID, &reg.StudentID, &reg.EventID, &reg.RegisteredAt); err != nil {
			return nil, storageErr("scan registration", err)
		}
		regs = append(regs, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate registrations", err)
	}
	return regs, nil
}
