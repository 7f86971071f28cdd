// Package controller holds the per-session admin workflow controllers.
// Each controller is an explicit object with injected dependencies and
// a defined lifecycle, owns an in-memory copy of the last successful
// fetch, and follows the optimistic-refresh pattern: mutations never
// patch the render model locally — they refetch authoritative state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// ErrValidation marks client-side validation failures that block the
// network call entirely.
var ErrValidation = errors.New("validation failed")

// ProductListController drives the product list page: fetch, render,
// edit, delete.
type ProductListController struct {
	backend   *backend.Client
	notifier  notify.Notifier
	confirmer ui.Confirmer
	audit     *broker.AuditPublisher
	sessionID string
	logger    *zap.Logger

	mu         sync.Mutex
	state      view.PageState
	cards      []view.ProductCard
	loadError  string
	index      map[string]models.Product
	edit       *view.EditForm
	generation uint64
}

// NewProductListController creates the controller for one session.
func NewProductListController(client *backend.Client, notifier notify.Notifier, confirmer ui.Confirmer, audit *broker.AuditPublisher, sessionID string) *ProductListController {
	return &ProductListController{
		backend:   client,
		notifier:  notifier,
		confirmer: confirmer,
		audit:     audit,
		sessionID: sessionID,
		logger:    util.NamedLogger("products"),
		state:     view.StateLoading,
		index:     make(map[string]models.Product),
	}
}

// Init primes the controller; the first Refresh does the initial fetch.
func (c *ProductListController) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = view.StateLoading
}

// Teardown releases the controller.
func (c *ProductListController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]models.Product)
	c.cards = nil
	c.edit = nil
}

// Refresh fetches the product list and rebuilds the render model.
// Overlapping refreshes are last-write-wins: a response belonging to a
// superseded refresh is dropped instead of overwriting newer state.
func (c *ProductListController) Refresh(ctx context.Context) view.ProductListPage {
	ctx, span := util.StartSpan(ctx, "ProductListController.Refresh")
	defer span.End()

	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.state = view.StateLoading
	c.mu.Unlock()

	products, err := c.backend.ListProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return c.pageLocked()
	}

	if err != nil {
		util.ProductRefreshesTotal.WithLabelValues("error").Inc()
		c.logger.Error("Fetch products failed", zap.Error(err))
		c.state = view.StateError
		c.loadError = "Could not load products."
		c.notifier.Show("Failed to load products.", notify.KindError)
		return c.pageLocked()
	}

	util.ProductRefreshesTotal.WithLabelValues("success").Inc()
	c.state = view.StateLoaded
	c.loadError = ""
	c.index = make(map[string]models.Product, len(products))
	c.cards = make([]view.ProductCard, 0, len(products))
	for i := range products {
		c.index[products[i].ID] = products[i]
		c.cards = append(c.cards, view.NewProductCard(&products[i]))
	}
	return c.pageLocked()
}

// Page returns the current render model.
func (c *ProductListController) Page() view.ProductListPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageLocked()
}

func (c *ProductListController) pageLocked() view.ProductListPage {
	page := view.ProductListPage{
		State: c.state,
		Cards: append([]view.ProductCard(nil), c.cards...),
	}
	switch c.state {
	case view.StateLoading:
		page.Skeletons = view.SkeletonCount
	case view.StateError:
		page.Error = c.loadError
	case view.StateLoaded:
		page.Empty = len(c.cards) == 0
	}
	return page
}

// OpenEdit populates the edit form from the in-memory index.
func (c *ProductListController) OpenEdit(id string) (*view.EditForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %s", id)
	}

	form := &view.EditForm{
		ID:              product.ID,
		Name:            product.Name,
		Description:     product.Description,
		RichDescription: product.RichDescription,
		Brand:           product.Brand,
		Price:           models.FormatCents(product.PriceCents),
		IsFeatured:      product.IsFeatured,
		Keywords:        strings.Join(product.Keywords, ", "),
	}
	c.edit = form
	return form, nil
}

// EditForm returns the open edit form, or nil.
func (c *ProductListController) EditForm() *view.EditForm {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == nil {
		return nil
	}
	snapshot := *c.edit
	return &snapshot
}

// CloseEdit dismisses the edit modal without submitting.
func (c *ProductListController) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

// EditInput is the submitted edit form.
type EditInput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	RichDescription string `json:"rich_description"`
	Brand           string `json:"brand"`
	Price           string `json:"price"`
	IsFeatured      bool   `json:"is_featured"`
	Keywords        string `json:"keywords"`
}

// SubmitEdit sends a full field update. A malformed price blocks the
// call; a failed call leaves the render model untouched. Success
// closes the modal and refetches the list.
func (c *ProductListController) SubmitEdit(ctx context.Context, input EditInput) error {
	ctx, span := util.StartSpan(ctx, "ProductListController.SubmitEdit")
	defer span.End()

	priceCents, err := models.ParsePriceCents(input.Price)
	if err != nil {
		util.ProductEditsTotal.WithLabelValues("invalid").Inc()
		c.notifier.Show("Please enter a valid price.", notify.KindWarning)
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	update := &models.ProductUpdate{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		RichDescription: strings.TrimSpace(input.RichDescription),
		Brand:           strings.TrimSpace(input.Brand),
		PriceCents:      priceCents,
		IsFeatured:      input.IsFeatured,
		Keywords:        parseKeywords(input.Keywords),
	}

	resp, err := c.backend.UpdateProduct(ctx, input.ID, update)
	if err != nil {
		util.ProductEditsTotal.WithLabelValues("error").Inc()
		c.logger.Error("Update product failed", zap.String("product_id", input.ID), zap.Error(err))
		c.notifier.Show(backend.UserMessage(err, "Failed updating product. Please try again."), notify.KindError)
		return err
	}

	util.ProductEditsTotal.WithLabelValues("success").Inc()

	message := resp.Message
	if message == "" {
		message = "Product updated successfully."
	}
	c.notifier.Show(message, notify.KindSuccess)
	c.CloseEdit()

	if err := c.audit.PublishProductUpdated(ctx, c.sessionID, input.ID, update.Name, priceCents); err != nil {
		c.logger.Error("Failed to publish ProductUpdated event", zap.Error(err))
	}

	c.Refresh(ctx)
	return nil
}

// Delete asks for confirmation, then deletes and refetches. Declining
// issues no network call.
func (c *ProductListController) Delete(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ProductListController.Delete")
	defer span.End()

	confirmed, err := c.confirmer.Confirm(ctx, ui.PopupConfig{
		Title:   "Confirm Deletion",
		Message: "Are you sure you want to delete this product? This action cannot be undone.",
	})
	if err != nil {
		return err
	}
	if !confirmed {
		util.ProductDeletesTotal.WithLabelValues("declined").Inc()
		return nil
	}

	resp, err := c.backend.DeleteProduct(ctx, id)
	if err != nil {
		util.ProductDeletesTotal.WithLabelValues("error").Inc()
		c.logger.Error("Delete product failed", zap.String("product_id", id), zap.Error(err))
		c.notifier.Show(backend.UserMessage(err, "Failed to delete product. Please try again."), notify.KindError)
		return err
	}

	util.ProductDeletesTotal.WithLabelValues("success").Inc()

	message := resp.Message
	if message == "" {
		message = "Product deleted successfully."
	}
	c.notifier.Show(message, notify.KindSuccess)

	if err := c.audit.PublishProductDeleted(ctx, c.sessionID, id); err != nil {
		c.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
	}

	c.Refresh(ctx)
	return nil
}

// parseKeywords splits a comma-separated keyword string, trims each
// entry, and drops empties.
func parseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
