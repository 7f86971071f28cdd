// Package view holds the typed render models the console hands to the
// browser shell. Every field is derived from the last successful fetch;
// failed mutations never patch these structures.
package view

import (
	"admin-console/internal/models"
)

// PageState is the load state of a list page.
type PageState string

const (
	StateLoading PageState = "loading"
	StateLoaded  PageState = "loaded"
	StateError   PageState = "error"
)

// SkeletonCount is the fixed number of placeholder cards rendered while
// the product list is loading.
const SkeletonCount = 3

// ProductCard is one rendered product row.
type ProductCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Price      string `json:"price"`
	IsFeatured bool   `json:"is_featured"`
}

// ProductListPage is the product list render model.
type ProductListPage struct {
	State     PageState     `json:"state"`
	Skeletons int           `json:"skeletons,omitempty"`
	Cards     []ProductCard `json:"cards"`
	Empty     bool          `json:"empty"`
	Error     string        `json:"error,omitempty"`
}

// EditForm is the product edit form, populated from the in-memory
// product index when the edit modal opens.
type EditForm struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	RichDescription string `json:"rich_description"`
	Brand           string `json:"brand"`
	Price           string `json:"price"`
	IsFeatured      bool   `json:"is_featured"`
	Keywords        string `json:"keywords"`
}

// BarcodePair is one barcode/serial input row in the intake form.
type BarcodePair struct {
	Barcode string `json:"barcode"`
	Serial  string `json:"serial"`
}

// IntakeForm is the inventory intake render model.
type IntakeForm struct {
	ProductID      string        `json:"product_id"`
	Quantity       int           `json:"quantity"`
	SameBarcode    bool          `json:"same_barcode"`
	Pairs          []BarcodePair `json:"pairs"`
	ValidationMsg  string        `json:"validation_msg,omitempty"`
	ScannerRunning bool          `json:"scanner_running"`
}

// OrderCard is one rendered order row.
type OrderCard struct {
	ID            string         `json:"id"`
	Customer      string         `json:"customer"`
	Street        string         `json:"street"`
	City          string         `json:"city"`
	Items         []OrderLine    `json:"items"`
	TotalItems    int            `json:"total_items"`
	PaymentMethod string         `json:"payment_method"`
	Receipt       string         `json:"receipt"`
	OrderTime     string         `json:"order_time"`
	Total         string         `json:"total"`
	Status        string         `json:"status"`
	StatusOptions []StatusOption `json:"status_options"`
}

// OrderLine is one line item on an order card.
type OrderLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StatusOption is one entry in the status dropdown.
type StatusOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// OrdersPage is the orders list render model.
type OrdersPage struct {
	Loading bool        `json:"loading"`
	Cards   []OrderCard `json:"cards"`
	Error   string      `json:"error,omitempty"`
}

// Redirect is a navigation directive for the browser shell. Delay is
// milliseconds to wait before navigating.
type Redirect struct {
	Location string `json:"location"`
	DelayMS  int64  `json:"delay_ms"`
}

// NewProductCard builds a card from a product.
func NewProductCard(p *models.Product) ProductCard {
	return ProductCard{
		ID:         p.ID,
		Name:       p.Name,
		Image:      p.Image,
		Price:      models.FormatCents(p.PriceCents),
		IsFeatured: p.IsFeatured,
	}
}

// NewOrderCard builds a card from an order.
func NewOrderCard(o *models.Order) OrderCard {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, OrderLine{Name: item.Name, Quantity: item.Quantity})
	}

	receipt := o.ReceiptNumber
	if receipt == "" {
		receipt = "N/A"
	}

	options := make([]StatusOption, 0, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		options = append(options, StatusOption{
			Value:    string(status),
			Selected: status == o.Status,
		})
	}

	return OrderCard{
		ID:            o.ID,
		Customer:      o.UserName,
		Street:        o.DeliveryAddress.Street,
		City:          o.DeliveryAddress.City,
		Items:         lines,
		TotalItems:    o.TotalItemCount(),
		PaymentMethod: o.PaymentMethod,
		Receipt:       receipt,
		OrderTime:     o.OrderTime.Local().Format("2006-01-02 15:04:05"),
		Total:         models.FormatCents(o.TotalCostCents),
		Status:        string(o.Status),
		StatusOptions: options,
	}
}
