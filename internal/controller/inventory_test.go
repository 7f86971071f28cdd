package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScanner satisfies scanner.Scanner without hardware.
type fakeScanner struct {
	started  int
	stopped  int
	startErr error
}

func (f *fakeScanner) Start(onDetect scanner.DetectFunc) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeScanner) Stop() error {
	f.stopped++
	return nil
}

// intakeBackend accepts inventory batches.
type intakeBackend struct {
	fail  bool
	posts int64
	last  []models.InventoryItem
}

func (b *intakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&b.posts, 1)
	if b.fail {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Duplicate barcode"})
		return
	}
	var items []models.InventoryItem
	json.NewDecoder(r.Body).Decode(&items)
	b.last = items
	json.NewEncoder(w).Encode(map[string]string{"message": fmt.Sprintf("%d items added", len(items))})
}

func newIntakeController(t *testing.T, srv *intakeBackend, fake *fakeScanner) (*IntakeController, *fakeNotifier, *recordingWriter) {
	t.Helper()
	client := newTestBackend(t, srv)
	notifier := &fakeNotifier{}
	publisher, writer := newTestPublisher()
	engine := scanner.NewEngine(func() (scanner.Scanner, error) {
		return fake, nil
	})
	c := NewIntakeController(client, notifier, publisher, engine, "sid-1", "ITEM", 1500*time.Millisecond)
	return c, notifier, writer
}

func TestOpenResetsFormAndStartsScanner(t *testing.T) {
	fake := &fakeScanner{}
	c, _, _ := newIntakeController(t, &intakeBackend{}, fake)

	c.Open("p1")

	form := c.Form()
	assert.Equal(t, "p1", form.ProductID)
	assert.Equal(t, 1, form.Quantity)
	assert.False(t, form.SameBarcode)
	require.Len(t, form.Pairs, 1)
	assert.True(t, form.ScannerRunning)
	assert.Equal(t, 1, fake.started)
}

func TestOpenScannerFailureStillAllowsManualEntry(t *testing.T) {
	fake := &fakeScanner{startErr: errors.New("no device")}
	c, notifier, _ := newIntakeController(t, &intakeBackend{}, fake)

	c.Open("p1")

	form := c.Form()
	assert.True(t, c.IsOpen())
	assert.False(t, form.ScannerRunning)
	require.Len(t, form.Pairs, 1)

	message, kind := notifier.last()
	assert.Equal(t, "Failed to initialize barcode scanner. Please check the device.", message)
	assert.Equal(t, notify.KindError, kind)
}

func TestSetQuantityRegeneratesPairsDestructively(t *testing.T) {
	c, _, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetBarcode(0, "111")

	c.SetQuantity(3)

	form := c.Form()
	require.Len(t, form.Pairs, 3)
	assert.Empty(t, form.Pairs[0].Barcode, "existing entries are discarded")
	assert.Empty(t, form.ValidationMsg)
}

func TestSetQuantityNonPositiveShowsValidation(t *testing.T) {
	c, _, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")

	c.SetQuantity(0)

	form := c.Form()
	assert.Empty(t, form.Pairs)
	assert.Equal(t, "Please enter a valid quantity.", form.ValidationMsg)
}

func TestToggleSameBarcodeCopiesFirstValueOnce(t *testing.T) {
	c, _, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(3)
	c.SetBarcode(0, " 111 ")

	c.ToggleSameBarcode(true)

	form := c.Form()
	assert.Equal(t, "111", form.Pairs[1].Barcode)
	assert.Equal(t, "111", form.Pairs[2].Barcode)

	// Not a live binding: later edits to the first input do not
	// propagate.
	c.SetBarcode(0, "222")
	form = c.Form()
	assert.Equal(t, "111", form.Pairs[1].Barcode)
}

func TestDetectionFillsFirstEmptyInput(t *testing.T) {
	c, notifier, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(2)

	c.HandleDetection("111")

	form := c.Form()
	assert.Equal(t, "111", form.Pairs[0].Barcode)
	assert.Empty(t, form.Pairs[1].Barcode)

	message, kind := notifier.last()
	assert.Equal(t, "Scanned barcode: 111", message)
	assert.Equal(t, notify.KindSuccess, kind)
}

func TestDetectionSameBarcodeFillsAll(t *testing.T) {
	c, notifier, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(3)
	c.ToggleSameBarcode(true)

	c.HandleDetection("999")

	form := c.Form()
	for _, pair := range form.Pairs {
		assert.Equal(t, "999", pair.Barcode)
	}

	message, _ := notifier.last()
	assert.Equal(t, "Scanned barcode: 999 (all inputs filled)", message)
}

func TestDetectionDiscardedWhenAllFilled(t *testing.T) {
	c, notifier, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetBarcode(0, "111")

	c.HandleDetection("222")

	form := c.Form()
	assert.Equal(t, "111", form.Pairs[0].Barcode, "filled input untouched")

	message, kind := notifier.last()
	assert.Equal(t, "All barcode fields are already filled", message)
	assert.Equal(t, notify.KindInfo, kind)
}

func TestDetectionDedupesRapidRepeats(t *testing.T) {
	c, _, _ := newIntakeController(t, &intakeBackend{}, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(3)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	c.HandleDetection("111")
	clock = clock.Add(500 * time.Millisecond)
	c.HandleDetection("111")

	form := c.Form()
	assert.Equal(t, "111", form.Pairs[0].Barcode)
	assert.Empty(t, form.Pairs[1].Barcode, "rapid repeat dropped")

	// Outside the window the same code counts again.
	clock = clock.Add(2 * time.Second)
	c.HandleDetection("111")

	form = c.Form()
	assert.Equal(t, "111", form.Pairs[1].Barcode)
}

func TestSubmitRejectsEmptyBarcodeWithOneBasedIndex(t *testing.T) {
	srv := &intakeBackend{}
	c, notifier, _ := newIntakeController(t, srv, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(2)
	c.SetBarcode(0, "111")

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(0), atomic.LoadInt64(&srv.posts))

	message, kind := notifier.last()
	assert.Equal(t, "Barcode #2 is empty", message)
	assert.Equal(t, notify.KindError, kind)
	assert.True(t, c.IsOpen(), "form stays open")
}

func TestSubmitGeneratesPlaceholderSerials(t *testing.T) {
	srv := &intakeBackend{}
	c, _, _ := newIntakeController(t, srv, &fakeScanner{})
	c.Open("p1")
	c.SetQuantity(2)
	c.SetBarcode(0, "111")
	c.SetBarcode(1, "222")
	c.SetSerial(0, "SN-CUSTOM")

	fixed := time.UnixMilli(1700000000000)
	c.now = func() time.Time { return fixed }

	err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, srv.last, 2)
	assert.Equal(t, "SN-CUSTOM", srv.last[0].Serial, "explicit serial kept")
	assert.Equal(t, "ITEM-1700000000000-2", srv.last[1].Serial, "placeholder is prefix-timestamp-index")
}

func TestSubmitSuccessStopsScannerAndClosesForm(t *testing.T) {
	srv := &intakeBackend{}
	fake := &fakeScanner{}
	c, notifier, writer := newIntakeController(t, srv, fake)
	c.Open("p1")
	c.SetBarcode(0, "111")

	err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, fake.stopped)
	assert.Equal(t, 1, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "1 items added", message)
	assert.Equal(t, notify.KindSuccess, kind)
}

func TestSubmitFailureKeepsScannerRunning(t *testing.T) {
	srv := &intakeBackend{fail: true}
	fake := &fakeScanner{}
	c, notifier, writer := newIntakeController(t, srv, fake)
	c.Open("p1")
	c.SetBarcode(0, "111")

	err := c.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, c.IsOpen(), "form stays open for retry")
	assert.Equal(t, 0, fake.stopped)
	assert.True(t, c.Form().ScannerRunning)
	assert.Equal(t, 0, writer.count())

	message, _ := notifier.last()
	assert.Equal(t, "Duplicate barcode", message)
}

func TestCloseAlwaysReleasesScanner(t *testing.T) {
	fake := &fakeScanner{}
	c, _, _ := newIntakeController(t, &intakeBackend{}, fake)
	c.Open("p1")

	c.Close()

	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, fake.stopped)

	// A second close is a harmless no-op.
	c.Close()
	assert.Equal(t, 1, fake.stopped)
}

func TestReopenWithoutCloseRestartsScanner(t *testing.T) {
	fake := &fakeScanner{}
	c, notifier, _ := newIntakeController(t, &intakeBackend{}, fake)

	c.Open("p1")
	c.Open("p2")

	form := c.Form()
	assert.Equal(t, "p2", form.ProductID)
	assert.True(t, form.ScannerRunning, "reopen must not report a dead scanner")
	assert.Equal(t, 2, fake.started)
	assert.Equal(t, 1, fake.stopped, "previous acquisition released")
	assert.Equal(t, 0, notifier.count(), "no scanner failure toast on reopen")
}

func TestReopenAfterCloseRestartsScanner(t *testing.T) {
	fake := &fakeScanner{}
	c, _, _ := newIntakeController(t, &intakeBackend{}, fake)

	c.Open("p1")
	c.Close()
	c.Open("p2")

	assert.Equal(t, 2, fake.started)
	assert.Equal(t, "p2", c.Form().ProductID)
}
