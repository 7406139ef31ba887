package repository

import (
	"context"
	"database/sql"

	"github.com/campushub/event-registration/internal/entity"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *entity.AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, registration_id, student_id, event_id, actor_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.Action, record.RegistrationID,
		record.StudentID, record.EventID, record.ActorID, record.OccurredAt,
	)
	if err != nil {
		return storageErr("insert audit record", err)
	}
	return nil
}

func (r *auditRepository) GetRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, registration_id, student_id, event_id, actor_id, occurred_at
		 FROM audit_log
		 ORDER BY occurred_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storageErr("query audit log", err)
	}
	defer rows.Close()

	records := make([]*entity.AuditRecord, 0)
	for rows.Next() {
		var rec entity.AuditRecord
		if err := rows.Scan(
			&rec.ID, &rec.Action, &rec.RegistrationID,
			&rec.StudentID, &rec.EventID, &rec.ActorID, &rec.OccurredAt,
		); err != nil {
			return nil, storageErr("scan audit record", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate audit log", err)
	}
	return records, nil
}
