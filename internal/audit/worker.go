package audit

import (
	"context"
	"encoding/json"
	"log"

	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/util"

	"github.com/segmentio/kafka-go"
)

// Worker consumes the audit topic and persists entries to the audit
// log. Already-persisted events are skipped, so redelivery after a
// consumer restart does not duplicate rows.
type Worker struct {
	consumer *broker.Consumer
	store    *Store
}

// NewWorker creates a new audit worker
func NewWorker(consumer *broker.Consumer, store *Store) *Worker {
	return &Worker{
		consumer: consumer,
		store:    store,
	}
}

// Start starts the worker
func (w *Worker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *Worker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}

func (w *Worker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		log.Printf("Failed to unmarshal audit event: %v", err)
		// A malformed message will never parse; drop it.
		return nil
	}

	processed, err := w.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	entry := &Entry{
		EventID:    base.EventID,
		EventType:  base.EventType,
		SessionID:  base.SessionID,
		Payload:    msg.Value,
		OccurredAt: base.Timestamp,
	}

	if err := w.store.Insert(ctx, entry); err != nil {
		return err
	}

	util.AuditEventsPersisted.Inc()
	return nil
}
