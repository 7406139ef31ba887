package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/campushub/event-registration/internal/database/postgres"
	rediscache "github.com/campushub/event-registration/internal/database/redis"
	"github.com/campushub/event-registration/internal/entity"
)

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"max=255"`
	Date        time.Time `json:"date" binding:"required"`
	MaxCapacity int       `json:"max_capacity" binding:"min=0"`
}

type UpdateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"max=255"`
	Date        time.Time `json:"date" binding:"required"`
	MaxCapacity int       `json:"max_capacity" binding:"min=0"`
}

type eventService struct {
	events repository.EventRepository
	cache  *rediscache.EventCache
}

// NewEventService builds the catalog service. cache may be nil, in which
// case every read goes to the database.
func NewEventService(events repository.EventRepository, cache *rediscache.EventCache) EventService {
	return &eventService{events: events, cache: cache}
}

func (s *eventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", entity.ErrInvalidInput)
	}
	if req.MaxCapacity < 0 {
		return nil, fmt.Errorf("%w: max capacity must be non-negative", entity.ErrInvalidInput)
	}

	event := &entity.Event{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, event.ID)
	logrus.WithFields(logrus.Fields{"event_id": event.ID, "max_capacity": event.MaxCapacity}).
		Info("event created")
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*entity.EventWithAvailability, error) {
	if s.cache != nil {
		if event, ok := s.cache.GetEvent(ctx, id); ok {
			return event, nil
		}
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			logrus.WithError(err).Warn("failed to cache event")
		}
	}
	return event, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	if s.cache != nil {
		if events, ok := s.cache.GetEventList(ctx); ok {
			return events, nil
		}
	}

	events, err := s.events.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEventList(ctx, events); err != nil {
			logrus.WithError(err).Warn("failed to cache event list")
		}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*entity.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", entity.ErrInvalidInput)
	}
	if req.MaxCapacity < 0 {
		return nil, fmt.Errorf("%w: max capacity must be non-negative", entity.ErrInvalidInput)
	}

	event := &entity.Event{
		ID:          id,
		Name:        name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	logrus.WithField("event_id", id).Info("event deleted")
	return nil
}

func (s *eventService) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logrus.WithError(err).WithField("event_id", id).Warn("failed to invalidate event cache")
	}
}
