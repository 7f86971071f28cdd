package models

import "time"

// Audit event types
const (
	EventTypeProductUpdated     = "PRODUCT_UPDATED"
	EventTypeProductDeleted     = "PRODUCT_DELETED"
	EventTypeInventoryAdded     = "INVENTORY_ADDED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeAdminLoggedIn      = "ADMIN_LOGGED_IN"
	EventTypeAdminLoggedOut     = "ADMIN_LOGGED_OUT"
)

// BaseEvent contains common fields for all audit events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductUpdatedEvent published after a successful product edit
type ProductUpdatedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// ProductDeletedEvent published after a successful product deletion
type ProductDeletedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
}

// InventoryAddedEvent published after a successful intake batch
type InventoryAddedEvent struct {
	BaseEvent
	ProductID string   `json:"product_id"`
	BatchID   string   `json:"batch_id"`
	Barcodes  []string `json:"barcodes"`
}

// OrderStatusChangedEvent published after a successful status update
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// AdminLoggedInEvent published after a successful login
type AdminLoggedInEvent struct {
	BaseEvent
	Email string `json:"email"`
}

// AdminLoggedOutEvent published after an explicit logout
type AdminLoggedOutEvent struct {
	BaseEvent
}
