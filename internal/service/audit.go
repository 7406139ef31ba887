package service

import (
	"context"

	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/pkg/rabbitmq"
)

// queueAuditPublisher adapts the broker queue to the AuditPublisher
// interface so the engine does not depend on the transport package.
type queueAuditPublisher struct {
	queue rabbitmq.Queue
}

func NewQueueAuditPublisher(queue rabbitmq.Queue) AuditPublisher {
	return &queueAuditPublisher{queue: queue}
}

func (p *queueAuditPublisher) Publish(ctx context.Context, record *entity.AuditRecord) error {
	return p.queue.Publish(ctx, record)
}
