package controller

import (
	"context"
	"fmt"
	"sync"

	"admin-console/internal/backend"
	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/ui"
	"admin-console/internal/util"
	"admin-console/internal/view"

	"go.uber.org/zap"
)

// Announcer shows a blocking acknowledgment popup.
type Announcer interface {
	Show(cfg ui.PopupConfig)
}

// OrdersController drives the orders page: fetch, render, status
// updates. Status is the only mutable field; the update is a direct
// server call. On failure the dropdown reverts to the last known
// status so the rendered card never disagrees with server state.
type OrdersController struct {
	backend   *backend.Client
	notifier  notify.Notifier
	announcer Announcer
	audit     *broker.AuditPublisher
	sessionID string
	logger    *zap.Logger

	mu         sync.Mutex
	loading    bool
	loadError  string
	orders     []models.Order
	index      map[string]int
	generation uint64
}

// NewOrdersController creates the controller for one session.
func NewOrdersController(client *backend.Client, notifier notify.Notifier, announcer Announcer, audit *broker.AuditPublisher, sessionID string) *OrdersController {
	return &OrdersController{
		backend:   client,
		notifier:  notifier,
		announcer: announcer,
		audit:     audit,
		sessionID: sessionID,
		logger:    util.NamedLogger("orders"),
		index:     make(map[string]int),
	}
}

// Init primes the controller.
func (c *OrdersController) Init() {}

// Teardown releases the controller.
func (c *OrdersController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = nil
	c.index = make(map[string]int)
}

// Refresh fetches the order list. The loading indicator shows for the
// duration of the fetch; a stale overlapping response is dropped.
func (c *OrdersController) Refresh(ctx context.Context) view.OrdersPage {
	ctx, span := util.StartSpan(ctx, "OrdersController.Refresh")
	defer span.End()

	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.loading = true
	c.mu.Unlock()

	orders, err := c.backend.ListOrders(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return c.pageLocked()
	}

	c.loading = false
	if err != nil {
		c.logger.Error("Fetch orders failed", zap.Error(err))
		c.loadError = "Could not load orders."
		c.notifier.Show("Failed to load orders.", notify.KindError)
		return c.pageLocked()
	}

	c.loadError = ""
	c.orders = orders
	c.index = make(map[string]int, len(orders))
	for i := range orders {
		c.index[orders[i].ID] = i
	}
	return c.pageLocked()
}

// Page returns the current render model, rebuilt from the last
// successful fetch.
func (c *OrdersController) Page() view.OrdersPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageLocked()
}

func (c *OrdersController) pageLocked() view.OrdersPage {
	page := view.OrdersPage{
		Loading: c.loading,
		Error:   c.loadError,
		Cards:   make([]view.OrderCard, 0, len(c.orders)),
	}
	for i := range c.orders {
		page.Cards = append(page.Cards, view.NewOrderCard(&c.orders[i]))
	}
	return page
}

// UpdateStatus issues the status update immediately — no confirmation,
// no debounce. Success shows a blocking acknowledgment; failure
// reverts the dropdown to the last known status and toasts the error.
func (c *OrdersController) UpdateStatus(ctx context.Context, orderID string, status string) error {
	ctx, span := util.StartSpan(ctx, "OrdersController.UpdateStatus")
	defer span.End()

	newStatus := models.OrderStatus(status)
	if !newStatus.Valid() {
		util.OrderStatusUpdatesTotal.WithLabelValues("invalid").Inc()
		c.notifier.Show("Unknown order status.", notify.KindWarning)
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	c.mu.Lock()
	pos, ok := c.index[orderID]
	if !ok {
		c.mu.Unlock()
		util.OrderStatusUpdatesTotal.WithLabelValues("invalid").Inc()
		c.notifier.Show("Order not found.", notify.KindError)
		return fmt.Errorf("%w: order not found: %s", ErrValidation, orderID)
	}
	previous := c.orders[pos].Status
	c.mu.Unlock()

	if _, err := c.backend.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		util.OrderStatusUpdatesTotal.WithLabelValues("error").Inc()
		c.logger.Error("Update order status failed",
			zap.String("order_id", orderID),
			zap.String("status", status),
			zap.Error(err))
		// The local order is untouched, so the next render shows the
		// previous status — the dropdown reverts rather than lying.
		c.notifier.Show(backend.UserMessage(err, "Failed to update order status."), notify.KindError)
		return err
	}

	c.mu.Lock()
	if pos, ok := c.index[orderID]; ok {
		c.orders[pos].Status = newStatus
	}
	c.mu.Unlock()

	util.OrderStatusUpdatesTotal.WithLabelValues("success").Inc()

	c.announcer.Show(ui.PopupConfig{
		Title:   "Order Updated",
		Message: fmt.Sprintf("Order #%s status updated to %s", orderID, newStatus),
	})

	if err := c.audit.PublishOrderStatusChanged(ctx, c.sessionID, orderID, previous, newStatus); err != nil {
		c.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}
