package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/event-registration/internal/entity"
)

// fakeLedger is an in-memory RegistrationRepository whose Create holds one
// lock across the whole check-then-insert sequence, matching the atomicity
// contract the postgres implementation provides with its row lock.
type fakeLedger struct {
	mu     sync.Mutex
	events map[string]int // event id -> max capacity
	regs   map[string]*entity.Registration
	now    time.Time
}

func newFakeLedger(events map[string]int) *fakeLedger {
	return &fakeLedger{
		events: events,
		regs:   make(map[string]*entity.Registration),
		now:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeLedger) Create(_ context.Context, studentID, eventID string) (*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	maxCapacity, ok := f.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}

	count := 0
	for _, r := range f.regs {
		if r.StudentID == studentID && r.EventID == eventID {
			return nil, entity.ErrAlreadyRegistered
		}
		if r.EventID == eventID {
			count++
		}
	}
	if count >= maxCapacity {
		return nil, entity.ErrEventFull
	}

	f.now = f.now.Add(time.Second)
	reg := &entity.Registration{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		EventID:      eventID,
		RegisteredAt: f.now,
	}
	f.regs[reg.ID] = reg
	return reg, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, entity.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeLedger) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[id]; !ok {
		return entity.ErrRegistrationNotFound
	}
	delete(f.regs, id)
	return nil
}

func (f *fakeLedger) GetByStudentID(_ context.Context, studentID string) ([]*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*entity.Registration, 0)
	for _, r := range f.regs {
		if r.StudentID == studentID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeLedger) GetAll(_ context.Context, rng *entity.DateRange) ([]*entity.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*entity.Registration, 0)
	for _, r := range f.regs {
		if rng != nil {
			if r.RegisteredAt.Before(rng.Start) || r.RegisteredAt.After(rng.End) {
				continue
			}
		}
		copied := *r
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeLedger) CountByEvent(_ context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.regs {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

type fakeAuditPublisher struct {
	mu      sync.Mutex
	records []*entity.AuditRecord
}

func (p *fakeAuditPublisher) Publish(_ context.Context, record *entity.AuditRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record)
	return nil
}

type fakeInvalidator struct {
	mu       sync.Mutex
	eventIDs []string
}

func (i *fakeInvalidator) Invalidate(_ context.Context, eventID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.eventIDs = append(i.eventIDs, eventID)
	return nil
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates registration for existing event", func(t *testing.T) {
		ledger := newFakeLedger(map[string]int{"event-1": 10})
		audit := &fakeAuditPublisher{}
		cache := &fakeInvalidator{}
		svc := NewRegistrationService(ledger, audit, cache)

		reg, err := svc.Register(ctx, "student-1", "event-1")
		require.NoError(t, err)
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, "student-1", reg.StudentID)
		assert.Equal(t, "event-1", reg.EventID)
		assert.False(t, reg.RegisteredAt.IsZero())

		require.Len(t, audit.records, 1)
		assert.Equal(t, entity.AuditActionRegister, audit.records[0].Action)
		assert.Equal(t, reg.ID, audit.records[0].RegistrationID)
		assert.Equal(t, []string{"event-1"}, cache.eventIDs)
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		svc := NewRegistrationService(newFakeLedger(map[string]int{}), nil, nil)

		_, err := svc.Register(ctx, "student-1", "missing")
		assert.ErrorIs(t, err, entity.ErrEventNotFound)
	})

	t.Run("second registration for same pair conflicts", func(t *testing.T) {
		svc := NewRegistrationService(newFakeLedger(map[string]int{"event-1": 10}), nil, nil)

		_, err := svc.Register(ctx, "student-1", "event-1")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "student-1", "event-1")
		assert.ErrorIs(t, err, entity.ErrAlreadyRegistered)
	})

	t.Run("full event conflicts", func(t *testing.T) {
		svc := NewRegistrationService(newFakeLedger(map[string]int{"event-1": 1}), nil, nil)

		_, err := svc.Register(ctx, "student-1", "event-1")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "student-2", "event-1")
		assert.ErrorIs(t, err, entity.ErrEventFull)
	})

	t.Run("zero capacity event is always full", func(t *testing.T) {
		svc := NewRegistrationService(newFakeLedger(map[string]int{"event-1": 0}), nil, nil)

		_, err := svc.Register(ctx, "student-1", "event-1")
		assert.ErrorIs(t, err, entity.ErrEventFull)
	})
}

func TestRegistrationService_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistrationService(newFakeLedger(map[string]int{"event-1": 100}), nil, nil)

	const attempts = 20
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "student-1", "event-1")
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, entity.ErrAlreadyRegistered):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestRegistrationService_ConcurrentCapacity(t *testing.T) {
	ctx := context.Background()

	const capacity = 10
	const students = capacity + 5

	ledger := newFakeLedger(map[string]int{"event-1": capacity})
	svc := NewRegistrationService(ledger, nil, nil)

	errs := make([]error, students)
	var wg sync.WaitGroup
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "student-"+string(rune('a'+i)), "event-1")
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, entity.ErrEventFull):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, capacity, successes)
	assert.Equal(t, students-capacity, conflicts)

	count, err := ledger.CountByEvent(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestRegistrationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can cancel and capacity is freed", func(t *testing.T) {
		ledger := newFakeLedger(map[string]int{"event-1": 1})
		audit := &fakeAuditPublisher{}
		svc := NewRegistrationService(ledger, audit, nil)

		reg, err := svc.Register(ctx, "student-1", "event-1")
		require.NoError(t, err)

		// Event is now full.
		_, err = svc.Register(ctx, "student-2", "event-1")
		require.ErrorIs(t, err, entity.ErrEventFull)

		require.NoError(t, svc.Cancel(ctx, "student-1", reg.ID))

		// Exactly one freed slot: the next register succeeds, one more is full again.
		_, err = svc.Register(ctx, "student-2", "event-1")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "student-3", "event-1")
		assert.ErrorIs(t, err, entity.ErrEventFull)

		require.Len(t, audit.records, 3)
		assert.Equal(t, entity.AuditActionCancel, audit.records[1].Action)
	})

	t.Run("non-owner is forbidden and record remains", func(t *testing.T) {
		ledger := newFakeLedger(map[string]int{"event-1": 5})
		svc := NewRegistrationService(ledger, nil, nil)

		reg, err := svc.Register(ctx, "student-1", "event-1")
		require.NoError(t, err)

		err = svc.Cancel(ctx, "student-2", reg.ID)
		assert.ErrorIs(t, err, entity.ErrForbidden)

		kept, err := ledger.GetByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, "student-1", kept.StudentID)
	})

	t.Run("missing registration is not found", func(t *testing.T) {
		svc := NewRegistrationService(newFakeLedger(map[string]int{}), nil, nil)
		err := svc.Cancel(ctx, "student-1", "missing")
		assert.ErrorIs(t, err, entity.ErrRegistrationNotFound)
	})
}

func TestRegistrationService_ListForStudent(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]int{"event-1": 10, "event-2": 10})
	svc := NewRegistrationService(ledger, nil, nil)

	_, err := svc.Register(ctx, "student-1", "event-1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "student-1", "event-2")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "student-2", "event-1")
	require.NoError(t, err)

	regs, err := svc.ListForStudent(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	for _, reg := range regs {
		assert.Equal(t, "student-1", reg.StudentID)
	}

	t.Run("no registrations is an empty list, not an error", func(t *testing.T) {
		regs, err := svc.ListForStudent(ctx, "student-99")
		require.NoError(t, err)
		assert.NotNil(t, regs)
		assert.Empty(t, regs)
	})
}

func TestRegistrationService_ListAll(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]int{"event-1": 10})
	svc := NewRegistrationService(ledger, nil, nil)

	first, err := svc.Register(ctx, "student-1", "event-1")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "student-2", "event-1")
	require.NoError(t, err)

	t.Run("no range returns everything", func(t *testing.T) {
		regs, err := svc.ListAll(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, regs, 2)
	})

	t.Run("inverted range is invalid", func(t *testing.T) {
		_, err := svc.ListAll(ctx, &entity.DateRange{
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, entity.ErrInvalidDateRange)
	})

	t.Run("single bound is invalid", func(t *testing.T) {
		_, err := svc.ListAll(ctx, &entity.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, entity.ErrInvalidDateRange)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		regs, err := svc.ListAll(ctx, &entity.DateRange{
			Start: first.RegisteredAt,
			End:   second.RegisteredAt,
		})
		require.NoError(t, err)
		assert.Len(t, regs, 2)
	})

	t.Run("start equals end matches exactly that instant", func(t *testing.T) {
		regs, err := svc.ListAll(ctx, &entity.DateRange{
			Start: first.RegisteredAt,
			End:   first.RegisteredAt,
		})
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, first.ID, regs[0].ID)
	})
}
