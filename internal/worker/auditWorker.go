package worker

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	repository "github.com/campushub/event-registration/internal/database/postgres"
	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/pkg/rabbitmq"
)

// AuditWorker drains the audit stream and persists each record to the
// audit_log table, giving administrators a durable trace of every ledger
// mutation independent of the request path that caused it.
type AuditWorker struct {
	queue rabbitmq.Queue
	audit repository.AuditRepository
}

func NewAuditWorker(queue rabbitmq.Queue, audit repository.AuditRepository) *AuditWorker {
	return &AuditWorker{queue: queue, audit: audit}
}

func (w *AuditWorker) Start(ctx context.Context) error {
	logrus.Info("Audit worker started")
	return w.queue.Consume(ctx, func(message []byte) error {
		return w.handleRecord(ctx, message)
	})
}

func (w *AuditWorker) handleRecord(ctx context.Context, message []byte) error {
	var record entity.AuditRecord
	if err := json.Unmarshal(message, &record); err != nil {
		// A malformed message will never parse; drop it instead of
		// requeueing forever.
		logrus.WithError(err).Error("discarding malformed audit message")
		return nil
	}

	if err := w.audit.Create(ctx, &record); err != nil {
		logrus.WithError(err).WithField("registration_id", record.RegistrationID).
			Error("failed to persist audit record")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"action":          record.Action,
		"registration_id": record.RegistrationID,
		"event_id":        record.EventID,
	}).Debug("audit record persisted")
	return nil
}
