package models

import "time"

// Product represents a catalog product as served by the remote admin API.
// The console holds an ephemeral copy per render cycle; the remote API
// owns the lifecycle.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	RichDescription string   `json:"rich_description"`
	Brand           string   `json:"brand"`
	PriceCents      int64    `json:"price_cents"`
	Image           string   `json:"image"`
	IsFeatured      bool     `json:"is_featured"`
	Keywords        []string `json:"keywords"`
}

// ProductUpdate is the full field set sent on an edit submission.
type ProductUpdate struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	RichDescription string   `json:"rich_description"`
	Brand           string   `json:"brand"`
	PriceCents      int64    `json:"price_cents"`
	IsFeatured      bool     `json:"is_featured"`
	Keywords        []string `json:"keywords"`
}

// InventoryItem is one barcode/serial pair in an intake batch.
type InventoryItem struct {
	Barcode string `json:"barcode"`
	Serial  string `json:"serial"`
}

// DeliveryAddress is the shipping destination on an order.
type DeliveryAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// OrderedItem is a line item on an order.
type OrderedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order represents a customer order. Status is the only field the
// console may mutate.
type Order struct {
	ID              string          `json:"id"`
	UserName        string          `json:"user_name"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	Items           []OrderedItem   `json:"items"`
	TotalCostCents  int64           `json:"total_cost_cents"`
	PaymentMethod   string          `json:"payment_method"`
	ReceiptNumber   string          `json:"receipt_number,omitempty"`
	OrderTime       time.Time       `json:"order_time"`
	Status          OrderStatus     `json:"status"`
}

// TotalItemCount sums the per-item quantities.
func (o *Order) TotalItemCount() int {
	var total int
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusPacking        OrderStatus = "Packing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

// OrderStatuses lists all statuses in lifecycle order, for rendering
// the status dropdown.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPacking,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Credentials are the admin login fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is applied when no preference has been stored.
const DefaultTheme = ThemeLight
