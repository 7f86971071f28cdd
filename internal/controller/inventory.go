package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"admin-console/internal/backend"
	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/scanner"
	"admin-console/internal/util"
	"admin-console/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntakeController collects N barcode/serial pairs for a product and
// submits them as one inventory batch. The scanning capability runs
// while the intake form is open and must be released on every exit
// path — success, cancel, or close — to avoid holding the scanner.
type IntakeController struct {
	backend      *backend.Client
	notifier     notify.Notifier
	audit        *broker.AuditPublisher
	engine       *scanner.Engine
	sessionID    string
	serialPrefix string
	dedupeWindow time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu             sync.Mutex
	open           bool
	productID      string
	quantity       int
	sameBarcode    bool
	pairs          []view.BarcodePair
	validationMsg  string
	scannerRunning bool
	lastCode       string
	lastCodeAt     time.Time
}

// NewIntakeController creates the controller for one session.
func NewIntakeController(client *backend.Client, notifier notify.Notifier, audit *broker.AuditPublisher, engine *scanner.Engine, sessionID, serialPrefix string, dedupeWindow time.Duration) *IntakeController {
	return &IntakeController{
		backend:      client,
		notifier:     notifier,
		audit:        audit,
		engine:       engine,
		sessionID:    sessionID,
		serialPrefix: serialPrefix,
		dedupeWindow: dedupeWindow,
		logger:       util.NamedLogger("intake"),
		now:          time.Now,
	}
}

// Open resets the form for a product — quantity 1, same-barcode off,
// exactly one input pair — and starts the scanner. When this controller
// still holds the scanner from a previous open, it is released first so
// the restart gets a fresh acquisition instead of ErrScannerBusy. A
// scanner start failure is surfaced as a toast; manual entry still
// works.
func (c *IntakeController) Open(productID string) {
	c.mu.Lock()
	wasRunning := c.scannerRunning
	c.open = true
	c.productID = productID
	c.quantity = 1
	c.sameBarcode = false
	c.pairs = make([]view.BarcodePair, 1)
	c.validationMsg = ""
	c.lastCode = ""
	c.mu.Unlock()

	if wasRunning {
		if err := c.engine.Stop(); err != nil {
			c.logger.Warn("Scanner stop failed", zap.Error(err))
		}
	}

	err := c.engine.Start(c.HandleDetection)

	c.mu.Lock()
	c.scannerRunning = err == nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Scanner start failed", zap.Error(err))
		c.notifier.Show("Failed to initialize barcode scanner. Please check the device.", notify.KindError)
	}
}

// SetQuantity regenerates the input set to exactly n pairs. Existing
// entries are discarded — this is destructive, not a merge. A
// non-positive quantity renders a validation message and no inputs.
func (c *IntakeController) SetQuantity(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return
	}

	c.quantity = n
	if n <= 0 {
		c.pairs = nil
		c.validationMsg = "Please enter a valid quantity."
		return
	}

	c.validationMsg = ""
	c.pairs = make([]view.BarcodePair, n)
}

// SetBarcode records a manually entered barcode.
func (c *IntakeController) SetBarcode(index int, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.pairs) {
		return
	}
	c.pairs[index].Barcode = value
}

// SetSerial records a manually entered serial.
func (c *IntakeController) SetSerial(index int, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.pairs) {
		return
	}
	c.pairs[index].Serial = value
}

// ToggleSameBarcode flips the same-barcode mode. Enabling it copies
// the first input's current value into every other barcode input once;
// it is not a live binding.
func (c *IntakeController) ToggleSameBarcode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sameBarcode = enabled
	if !enabled || len(c.pairs) == 0 {
		return
	}

	first := strings.TrimSpace(c.pairs[0].Barcode)
	for i := range c.pairs {
		c.pairs[i].Barcode = first
	}
}

// HandleDetection routes a scanned code into the form: all inputs when
// same-barcode is on, the first empty input otherwise. When every
// input is already filled the detection is discarded with an
// informational toast. Rapid repeats of the same code are ignored.
func (c *IntakeController) HandleDetection(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	c.mu.Lock()

	if !c.open || len(c.pairs) == 0 {
		c.mu.Unlock()
		return
	}

	now := c.now()
	if code == c.lastCode && now.Sub(c.lastCodeAt) < c.dedupeWindow {
		c.lastCodeAt = now
		c.mu.Unlock()
		util.ScannerDetectionsTotal.WithLabelValues("deduped").Inc()
		return
	}
	c.lastCode = code
	c.lastCodeAt = now

	if c.sameBarcode {
		for i := range c.pairs {
			c.pairs[i].Barcode = code
		}
		c.mu.Unlock()
		util.ScannerDetectionsTotal.WithLabelValues("filled_all").Inc()
		c.notifier.Show(fmt.Sprintf("Scanned barcode: %s (all inputs filled)", code), notify.KindSuccess)
		return
	}

	for i := range c.pairs {
		if strings.TrimSpace(c.pairs[i].Barcode) == "" {
			c.pairs[i].Barcode = code
			c.mu.Unlock()
			util.ScannerDetectionsTotal.WithLabelValues("filled_one").Inc()
			c.notifier.Show(fmt.Sprintf("Scanned barcode: %s", code), notify.KindSuccess)
			return
		}
	}

	c.mu.Unlock()
	util.ScannerDetectionsTotal.WithLabelValues("discarded").Inc()
	c.notifier.Show("All barcode fields are already filled", notify.KindInfo)
}

// Submit validates and sends the batch. Every barcode must be
// non-empty; blank serials get generated placeholders unique within
// the batch. On success the scanner is stopped and the form closed; on
// failure the scanner keeps running so the operator can fix and retry.
func (c *IntakeController) Submit(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "IntakeController.Submit")
	defer span.End()

	c.mu.Lock()

	if !c.open {
		c.mu.Unlock()
		return fmt.Errorf("%w: intake form is not open", ErrValidation)
	}

	productID := c.productID
	baseTimestamp := c.now().UnixMilli()

	items := make([]models.InventoryItem, 0, len(c.pairs))
	for i, pair := range c.pairs {
		barcode := strings.TrimSpace(pair.Barcode)
		if barcode == "" {
			c.mu.Unlock()
			util.IntakeBatchesTotal.WithLabelValues("invalid").Inc()
			message := fmt.Sprintf("Barcode #%d is empty", i+1)
			c.notifier.Show(message, notify.KindError)
			return fmt.Errorf("%w: %s", ErrValidation, message)
		}

		serial := strings.TrimSpace(pair.Serial)
		if serial == "" {
			serial = fmt.Sprintf("%s-%d-%d", c.serialPrefix, baseTimestamp, i+1)
		}

		items = append(items, models.InventoryItem{Barcode: barcode, Serial: serial})
	}
	c.mu.Unlock()

	if len(items) == 0 {
		util.IntakeBatchesTotal.WithLabelValues("invalid").Inc()
		c.notifier.Show("No items to add.", notify.KindError)
		return fmt.Errorf("%w: no items to add", ErrValidation)
	}

	resp, err := c.backend.AddInventory(ctx, productID, items)
	if err != nil {
		util.IntakeBatchesTotal.WithLabelValues("error").Inc()
		c.logger.Error("Add inventory failed", zap.String("product_id", productID), zap.Error(err))
		c.notifier.Show(backend.UserMessage(err, "Failed to add inventory. Please check input."), notify.KindError)
		return err
	}

	util.IntakeBatchesTotal.WithLabelValues("success").Inc()
	util.IntakeBatchSize.Observe(float64(len(items)))

	if err := c.engine.Stop(); err != nil {
		c.logger.Warn("Scanner stop failed", zap.Error(err))
	}

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	message := resp.Message
	if message == "" {
		message = "Inventory added successfully."
	}
	c.notifier.Show(message, notify.KindSuccess)

	barcodes := make([]string, 0, len(items))
	for _, item := range items {
		barcodes = append(barcodes, item.Barcode)
	}
	if err := c.audit.PublishInventoryAdded(ctx, c.sessionID, productID, uuid.New().String(), barcodes); err != nil {
		c.logger.Error("Failed to publish InventoryAdded event", zap.Error(err))
	}

	return nil
}

// Close dismisses the form (close button or backdrop click) and always
// stops and releases the scanner, regardless of what happened before.
func (c *IntakeController) Close() {
	if err := c.engine.Stop(); err != nil {
		c.logger.Warn("Scanner stop failed", zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Teardown releases the controller, stopping any live scanner.
func (c *IntakeController) Teardown() {
	c.Close()
}

func (c *IntakeController) resetLocked() {
	c.open = false
	c.productID = ""
	c.quantity = 1
	c.sameBarcode = false
	c.pairs = nil
	c.validationMsg = ""
	c.scannerRunning = false
	c.lastCode = ""
}

// Form returns a render snapshot of the intake form.
func (c *IntakeController) Form() view.IntakeForm {
	c.mu.Lock()
	defer c.mu.Unlock()

	return view.IntakeForm{
		ProductID:      c.productID,
		Quantity:       c.quantity,
		SameBarcode:    c.sameBarcode,
		Pairs:          append([]view.BarcodePair(nil), c.pairs...),
		ValidationMsg:  c.validationMsg,
		ScannerRunning: c.scannerRunning && c.engine.Running(),
	}
}

// IsOpen reports whether the intake form is currently open.
func (c *IntakeController) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
