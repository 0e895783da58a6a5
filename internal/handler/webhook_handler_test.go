package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	cfg := &config.Config{
		Metrics:  config.MetricsConfig{Prefix: "test"},
		Paystack: config.PaystackConfig{BaseURL: "https://paystack.test"},
		Storage:  config.StorageConfig{PublicBaseURL: "https://images.test"},
	}
	prometheus.InitMetrics(cfg)
	Init(cfg)
	os.Exit(m.Run())
}

// newTestDB installs a fresh in-memory database for the duration of a test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.Order{},
		&model.Notification{},
	))
	database.SetDB(db)
	return db
}

func seedStore(t *testing.T, db *gorm.DB, name, slug, owner string) model.Store {
	t.Helper()

	store := model.Store{
		Name:      name,
		Email:     fmt.Sprintf("owner@%s.test", slug),
		Owner:     owner,
		Slug:      slug,
		SecretKey: "sk_test_" + slug,
	}
	require.NoError(t, db.Create(&store).Error)
	return store
}

func seedPendingOrder(t *testing.T, db *gorm.DB, store model.Store, slug, reference string) model.Order {
	t.Helper()

	order := model.Order{
		Slug:      slug,
		StoreID:   store.ID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Line1:     "1 Analytical Way",
		City:      "London",
		State:     "Greater London",
		Zip:       "N1 9GU",
		Country:   "United Kingdom",
		Phone:     "+442079460000",
		Email:     "ada@example.com",
		Amount:    2400,
		Shipping:  100,
		Reference: reference,
		Status:    model.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func signBody(secretKey string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postPaystack(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/paystack", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, PaystackWebhook(e.NewContext(req, rec)))
	return rec
}

func notificationCount(t *testing.T, db *gorm.DB, orderID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Where("order_id = ?", orderID).Count(&count).Error)
	return count
}

func TestPaystackWebhookRejectsMissingSignature(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db, "Acme", "acme", "user_acme")
	order := seedPendingOrder(t, db, store, "ORD-00001", "ref_acme_1")

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_acme_1","status":"success"}}`)
	rec := postPaystack(t, body, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.EqualValues(t, 0, notificationCount(t, db, order.ID))
}

func TestPaystackWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db, "Acme", "acme", "user_acme")
	order := seedPendingOrder(t, db, store, "ORD-00001", "ref_acme_1")

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_acme_1","status":"success"}}`)
	rec := postPaystack(t, body, "deadbeef")
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.EqualValues(t, 0, notificationCount(t, db, order.ID))
}

func TestPaystackWebhookMarksOrderPaid(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db, "Acme", "acme", "user_acme")
	order := seedPendingOrder(t, db, store, "ORD-00001", "ref_acme_1")

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_acme_1","status":"success"}}`)
	rec := postPaystack(t, body, signBody(store.SecretKey, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusSuccess, got.Status)
	assert.EqualValues(t, 2, notificationCount(t, db, order.ID))
}

func TestPaystackWebhookReplayDoesNotReenqueue(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db, "Acme", "acme", "user_acme")
	order := seedPendingOrder(t, db, store, "ORD-00001", "ref_acme_1")

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_acme_1","status":"success"}}`)
	signature := signBody(store.SecretKey, body)

	postPaystack(t, body, signature)
	rec := postPaystack(t, body, signature)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusSuccess, got.Status)
	assert.EqualValues(t, 2, notificationCount(t, db, order.ID))
}

func TestPaystackWebhookUnknownReference(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db, "Acme", "acme", "user_acme")

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_nobody","status":"success"}}`)
	rec := postPaystack(t, body, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPaystackWebhookRecordsProviderStatus(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db, "Acme", "acme", "user_acme")
	order := seedPendingOrder(t, db, store, "ORD-00001", "ref_acme_1")

	body := []byte(`{"event":"charge.failed","data":{"reference":"ref_acme_1","status":"failed"}}`)
	rec := postPaystack(t, body, signBody(store.SecretKey, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, "failed", got.Status)
	assert.EqualValues(t, 0, notificationCount(t, db, order.ID))
}
