package broker

import (
	"context"
	"time"

	"admin-console/internal/models"

	"github.com/google/uuid"
)

// EventWriter is the narrow producer interface the audit publisher
// writes through, so controllers can be tested with a recording writer.
type EventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// AuditPublisher publishes admin audit events. Publishing never fails a
// mutation: callers log publish errors and move on.
type AuditPublisher struct {
	writer EventWriter
}

// NewAuditPublisher creates a new audit publisher
func NewAuditPublisher(writer EventWriter) *AuditPublisher {
	return &AuditPublisher{writer: writer}
}

func newBase(eventType, sessionID string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// PublishProductUpdated publishes a ProductUpdated event
func (ap *AuditPublisher) PublishProductUpdated(ctx context.Context, sessionID, productID, name string, priceCents int64) error {
	event := &models.ProductUpdatedEvent{
		BaseEvent:  newBase(models.EventTypeProductUpdated, sessionID),
		ProductID:  productID,
		Name:       name,
		PriceCents: priceCents,
	}
	return ap.writer.PublishEvent(ctx, "product-"+productID, event)
}

// PublishProductDeleted publishes a ProductDeleted event
func (ap *AuditPublisher) PublishProductDeleted(ctx context.Context, sessionID, productID string) error {
	event := &models.ProductDeletedEvent{
		BaseEvent: newBase(models.EventTypeProductDeleted, sessionID),
		ProductID: productID,
	}
	return ap.writer.PublishEvent(ctx, "product-"+productID, event)
}

// PublishInventoryAdded publishes an InventoryAdded event
func (ap *AuditPublisher) PublishInventoryAdded(ctx context.Context, sessionID, productID, batchID string, barcodes []string) error {
	event := &models.InventoryAddedEvent{
		BaseEvent: newBase(models.EventTypeInventoryAdded, sessionID),
		ProductID: productID,
		BatchID:   batchID,
		Barcodes:  barcodes,
	}
	return ap.writer.PublishEvent(ctx, "product-"+productID, event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ap *AuditPublisher) PublishOrderStatusChanged(ctx context.Context, sessionID, orderID string, from, to models.OrderStatus) error {
	event := &models.OrderStatusChangedEvent{
		BaseEvent:  newBase(models.EventTypeOrderStatusChanged, sessionID),
		OrderID:    orderID,
		FromStatus: string(from),
		ToStatus:   string(to),
	}
	return ap.writer.PublishEvent(ctx, "order-"+orderID, event)
}

// PublishAdminLoggedIn publishes an AdminLoggedIn event
func (ap *AuditPublisher) PublishAdminLoggedIn(ctx context.Context, sessionID, email string) error {
	event := &models.AdminLoggedInEvent{
		BaseEvent: newBase(models.EventTypeAdminLoggedIn, sessionID),
		Email:     email,
	}
	return ap.writer.PublishEvent(ctx, "session-"+sessionID, event)
}

// PublishAdminLoggedOut publishes an AdminLoggedOut event
func (ap *AuditPublisher) PublishAdminLoggedOut(ctx context.Context, sessionID string) error {
	event := &models.AdminLoggedOutEvent{
		BaseEvent: newBase(models.EventTypeAdminLoggedOut, sessionID),
	}
	return ap.writer.PublishEvent(ctx, "session-"+sessionID, event)
}
