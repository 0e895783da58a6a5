package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/convertly-dev/convertlykit/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two stores each carry an order with the same sequential slug; lookups by
// slug must never cross store boundaries.
func TestGetOrderBySlugScopedToStore(t *testing.T) {
	db := newTestDB(t)
	acme := seedStore(t, db, "Acme", "acme", "user_acme")
	bravo := seedStore(t, db, "Bravo", "bravo", "user_bravo")
	seedPendingOrder(t, db, acme, "ORD-00001", "ref_acme_1")
	seedPendingOrder(t, db, bravo, "ORD-00001", "ref_bravo_1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/orders/get-order-by-reference-or-slug?slug=ORD-00001&storeSlug=bravo", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, GetOrderByReferenceOrSlug(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ref_bravo_1")
	assert.NotContains(t, rec.Body.String(), "ref_acme_1")
}

func TestGetOrderBySlugRequiresStoreSlug(t *testing.T) {
	db := newTestDB(t)
	acme := seedStore(t, db, "Acme", "acme", "user_acme")
	seedPendingOrder(t, db, acme, "ORD-00001", "ref_acme_1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/orders/get-order-by-reference-or-slug?slug=ORD-00001", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, GetOrderByReferenceOrSlug(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderByReferenceAcrossStores(t *testing.T) {
	db := newTestDB(t)
	bravo := seedStore(t, db, "Bravo", "bravo", "user_bravo")
	seedPendingOrder(t, db, bravo, "ORD-00001", "ref_bravo_1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/orders/get-order-by-reference-or-slug?reference=ref_bravo_1", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, GetOrderByReferenceOrSlug(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ref_bravo_1")
}

func TestDeleteProductOtherStoreNotFound(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db, "Acme", "acme", "user_acme")
	bravo := seedStore(t, db, "Bravo", "bravo", "user_bravo")

	product := model.Product{StoreID: bravo.ID, Name: "Woven Basket", Price: 40}
	require.NoError(t, db.Create(&product).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+strconv.Itoa(int(product.ID)), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(product.ID)))
	c.Set("subject", "user_acme")
	require.NoError(t, DeleteProduct(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var got model.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, bravo.ID, got.StoreID)
}
