package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/campushub/event-registration/internal/entity"
)

const (
	eventKeyPrefix = "event:"
	eventListKey   = "events:all"
)

// EventCache is a read-through cache for public event catalog reads.
// Capacity checks never consult it: the registration transaction reads the
// event row directly, so a stale cache can only affect the browsing surface.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{client: client, ttl: ttl}
}

func (c *EventCache) GetEvent(ctx context.Context, id string) (*entity.EventWithAvailability, bool) {
	data, err := c.client.Get(ctx, eventKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var event entity.EventWithAvailability
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, false
	}
	return &event, true
}

func (c *EventCache) SetEvent(ctx context.Context, event *entity.EventWithAvailability) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventKeyPrefix+event.ID, data, c.ttl).Err()
}

func (c *EventCache) GetEventList(ctx context.Context) ([]*entity.EventWithAvailability, bool) {
	data, err := c.client.Get(ctx, eventListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var events []*entity.EventWithAvailability
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (c *EventCache) SetEventList(ctx context.Context, events []*entity.EventWithAvailability) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventListKey, data, c.ttl).Err()
}

// Invalidate drops both the single entry and the list; called on any
// event mutation and on any registration mutation that changes counts.
func (c *EventCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, eventKeyPrefix+id, eventListKey).Err()
}

// Healthy reports whether redis answers a ping.
func (c *EventCache) Healthy(ctx context.Context) bool {
	err := c.client.Ping(ctx).Err()
	return err == nil || errors.Is(err, redis.Nil)
}
