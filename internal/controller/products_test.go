package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// productBackend is a scripted admin API for the product endpoints.
type productBackend struct {
	products []models.Product
	failList bool
	failMut  bool

	lists   int64
	puts    int64
	deletes int64
}

func (b *productBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet:
		atomic.AddInt64(&b.lists, 1)
		if b.failList {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(b.products)
	case r.Method == http.MethodPut:
		atomic.AddInt64(&b.puts, 1)
		if b.failMut {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Validation failed on server"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Product updated"})
	case r.Method == http.MethodDelete:
		atomic.AddInt64(&b.deletes, 1)
		if b.failMut {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Delete failed on server"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Product deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Widget", Brand: "Acme", PriceCents: 1250, Keywords: []string{"tools", "metal"}},
		{ID: "p2", Name: "Gadget", Brand: "Acme", PriceCents: 99},
	}
}

func newProductsController(t *testing.T, backend *productBackend) (*ProductListController, *fakeNotifier, *stubConfirmer, *recordingWriter) {
	t.Helper()
	client := newTestBackend(t, backend)
	notifier := &fakeNotifier{}
	confirmer := &stubConfirmer{}
	publisher, writer := newTestPublisher()
	c := NewProductListController(client, notifier, confirmer, publisher, "sid-1")
	c.Init()
	return c, notifier, confirmer, writer
}

func TestProductsInitialStateShowsSkeletons(t *testing.T) {
	c, _, _, _ := newProductsController(t, &productBackend{})

	page := c.Page()
	assert.Equal(t, view.StateLoading, page.State)
	assert.Equal(t, view.SkeletonCount, page.Skeletons)
	assert.Empty(t, page.Cards)
}

func TestProductsRefreshRendersCards(t *testing.T) {
	c, _, _, _ := newProductsController(t, &productBackend{products: sampleProducts()})

	page := c.Refresh(context.Background())
	assert.Equal(t, view.StateLoaded, page.State)
	assert.False(t, page.Empty)
	require.Len(t, page.Cards, 2)
	assert.Equal(t, "Widget", page.Cards[0].Name)
	assert.Equal(t, "12.50", page.Cards[0].Price)
	assert.Equal(t, "0.99", page.Cards[1].Price)
}

func TestProductsRefreshEmptyList(t *testing.T) {
	c, _, _, _ := newProductsController(t, &productBackend{})

	page := c.Refresh(context.Background())
	assert.Equal(t, view.StateLoaded, page.State)
	assert.True(t, page.Empty)
}

func TestProductsRefreshFailureShowsErrorAndToast(t *testing.T) {
	c, notifier, _, _ := newProductsController(t, &productBackend{failList: true})

	page := c.Refresh(context.Background())
	assert.Equal(t, view.StateError, page.State)
	assert.Equal(t, "Could not load products.", page.Error)

	message, kind := notifier.last()
	assert.Equal(t, "Failed to load products.", message)
	assert.Equal(t, notify.KindError, kind)
}

func TestOpenEditUsesIndexNotNetwork(t *testing.T) {
	srv := &productBackend{products: sampleProducts()}
	c, _, _, _ := newProductsController(t, srv)
	c.Refresh(context.Background())
	listsBefore := atomic.LoadInt64(&srv.lists)

	form, err := c.OpenEdit("p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", form.Name)
	assert.Equal(t, "12.50", form.Price)
	assert.Equal(t, "tools, metal", form.Keywords)
	assert.Equal(t, listsBefore, atomic.LoadInt64(&srv.lists), "edit opens from the in-memory index")

	_, err = c.OpenEdit("missing")
	assert.Error(t, err)
}

func TestSubmitEditInvalidPriceBlocksNetworkCall(t *testing.T) {
	srv := &productBackend{products: sampleProducts()}
	c, notifier, _, _ := newProductsController(t, srv)
	c.Refresh(context.Background())

	err := c.SubmitEdit(context.Background(), EditInput{ID: "p1", Name: "Widget", Price: "12.345"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(0), atomic.LoadInt64(&srv.puts))

	message, kind := notifier.last()
	assert.Equal(t, "Please enter a valid price.", message)
	assert.Equal(t, notify.KindWarning, kind)
}

func TestSubmitEditSuccessClosesModalAndRefetches(t *testing.T) {
	srv := &productBackend{products: sampleProducts()}
	c, notifier, _, writer := newProductsController(t, srv)
	c.Refresh(context.Background())
	c.OpenEdit("p1")
	listsBefore := atomic.LoadInt64(&srv.lists)

	err := c.SubmitEdit(context.Background(), EditInput{
		ID:       "p1",
		Name:     "  Widget XL  ",
		Price:    "15.00",
		Keywords: "tools, , heavy",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&srv.puts))
	assert.Equal(t, listsBefore+1, atomic.LoadInt64(&srv.lists), "success refetches the list")
	assert.Nil(t, c.EditForm(), "modal closed")
	assert.Equal(t, 1, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "Product updated", message)
	assert.Equal(t, notify.KindSuccess, kind)
}

func TestSubmitEditFailureKeepsModalAndList(t *testing.T) {
	srv := &productBackend{products: sampleProducts(), failMut: true}
	c, notifier, _, writer := newProductsController(t, srv)
	c.Refresh(context.Background())
	c.OpenEdit("p1")
	listsBefore := atomic.LoadInt64(&srv.lists)

	err := c.SubmitEdit(context.Background(), EditInput{ID: "p1", Name: "Widget", Price: "15.00"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))

	assert.NotNil(t, c.EditForm(), "modal stays open on failure")
	assert.Equal(t, listsBefore, atomic.LoadInt64(&srv.lists), "no refetch on failure")
	assert.Equal(t, 0, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "Validation failed on server", message, "server message preferred")
	assert.Equal(t, notify.KindError, kind)

	page := c.Page()
	require.Len(t, page.Cards, 2)
	assert.Equal(t, "Widget", page.Cards[0].Name, "render model untouched")
}

func TestDeleteDeclinedIssuesNoNetworkCall(t *testing.T) {
	srv := &productBackend{products: sampleProducts()}
	c, notifier, confirmer, writer := newProductsController(t, srv)
	c.Refresh(context.Background())
	confirmer.answer = false
	listsBefore := atomic.LoadInt64(&srv.lists)

	err := c.Delete(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, 1, confirmer.asked)
	assert.Equal(t, int64(0), atomic.LoadInt64(&srv.deletes))
	assert.Equal(t, listsBefore, atomic.LoadInt64(&srv.lists))
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, writer.count())
}

func TestDeleteConfirmedDeletesAndRefetches(t *testing.T) {
	srv := &productBackend{products: sampleProducts()}
	c, notifier, confirmer, writer := newProductsController(t, srv)
	c.Refresh(context.Background())
	confirmer.answer = true
	listsBefore := atomic.LoadInt64(&srv.lists)

	err := c.Delete(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&srv.deletes))
	assert.Equal(t, listsBefore+1, atomic.LoadInt64(&srv.lists))
	assert.Equal(t, 1, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "Product deleted", message)
	assert.Equal(t, notify.KindSuccess, kind)
}

func TestDeleteFailureToastsServerMessage(t *testing.T) {
	srv := &productBackend{products: sampleProducts(), failMut: true}
	c, notifier, confirmer, _ := newProductsController(t, srv)
	c.Refresh(context.Background())
	confirmer.answer = true

	err := c.Delete(context.Background(), "p1")
	require.Error(t, err)

	message, kind := notifier.last()
	assert.Equal(t, "Delete failed on server", message)
	assert.Equal(t, notify.KindError, kind)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseKeywords("a, b"))
	assert.Equal(t, []string{"a"}, parseKeywords("a,,  ,"))
	assert.Empty(t, parseKeywords(""))
}
