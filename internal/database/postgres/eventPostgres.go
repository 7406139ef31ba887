package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campushub/event-registration/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, name, description, location, date, max_capacity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Name, event.Description, event.Location,
		event.Date, event.MaxCapacity, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return storageErr("insert event", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.EventWithAvailability, error) {
	var e entity.EventWithAvailability
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.name, e.description, e.location, e.date, e.max_capacity,
		        e.created_at, e.updated_at,
		        COUNT(r.id) AS registered_count
		 FROM events e
		 LEFT JOIN registrations r ON r.event_id = e.id
		 WHERE e.id = $1
		 GROUP BY e.id`,
		id,
	).Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.MaxCapacity,
		&e.CreatedAt, &e.UpdatedAt, &e.RegisteredCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, storageErr("get event", err)
	}
	e.AvailableSpots = e.MaxCapacity - e.RegisteredCount
	return &e, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.description, e.location, e.date, e.max_capacity,
		        e.created_at, e.updated_at,
		        COUNT(r.id) AS registered_count
		 FROM events e
		 LEFT JOIN registrations r ON r.event_id = e.id
		 GROUP BY e.id
		 ORDER BY e.date ASC`,
	)
	if err != nil {
		return nil, storageErr("query events", err)
	}
	defer rows.Close()

	events := make([]*entity.EventWithAvailability, 0)
	for rows.Next() {
		var e entity.EventWithAvailability
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.MaxCapacity,
			&e.CreatedAt, &e.UpdatedAt, &e.RegisteredCount,
		); err != nil {
			return nil, storageErr("scan event", err)
		}
		e.AvailableSpots = e.MaxCapacity - e.RegisteredCount
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate events", err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	event.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET name = $1, description = $2, location = $3, date = $4,
		     max_capacity = $5, updated_at = $6
		 WHERE id = $7`,
		event.Name, event.Description, event.Location, event.Date,
		event.MaxCapacity, event.UpdatedAt, event.ID,
	)
	if err != nil {
		return storageErr("update event", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if affected == 0 {
		return entity.ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete event", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if affected == 0 {
		return entity.ErrEventNotFound
	}
	return nil
}
