package notification

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/mailer"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	os.Exit(m.Run())
}

func testOrder() *model.Order {
	return &model.Order{
		Slug:      "ORD-00007",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Line1:     "1 Analytical Way",
		City:      "London",
		Zip:       "E1 6AN",
		Email:     "ada@example.com",
		Phone:     "+447700900000",
		Amount:    2400,
		Shipping:  500,
	}
}

func testItems() []model.ResolvedOrderItem {
	return []model.ResolvedOrderItem{
		{
			OrderItem: model.OrderItem{ProductID: 1, Quantity: 2},
			Name:      "Acme Shirt",
			Price:     1200,
		},
	}
}

func TestRenderConfirmation(t *testing.T) {
	store := &model.Store{Name: "Acme", Slug: "acme"}
	html := renderConfirmation(testOrder(), store, testItems(), "https://acme.example.com/order?slug=ORD-00007")

	assert.Contains(t, html, "Acme")
	assert.Contains(t, html, "ORD-00007")
	assert.Contains(t, html, "Acme Shirt")
	assert.Contains(t, html, "2400.00")
	assert.Contains(t, html, "500.00")
	assert.Contains(t, html, "2900.00")
	assert.Contains(t, html, "https://acme.example.com/order?slug=ORD-00007")
}

func TestRenderOwnerNotification(t *testing.T) {
	store := &model.Store{Name: "Acme", Email: "owner@acme.example"}
	html := renderOwnerNotification(testOrder(), store, testItems())

	assert.Contains(t, html, "New order on Acme")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "ada@example.com")
	assert.Contains(t, html, "2900.00")
}

func TestRenderEscapesMarkupInBuyerFields(t *testing.T) {
	order := testOrder()
	order.FirstName = `<script>alert("x")</script>`
	store := &model.Store{Name: "Acme"}
	items := testItems()
	items[0].Name = `<b>Shirt & Co</b>`

	confirmation := renderConfirmation(order, store, items, "https://acme.example.com/order")
	assert.NotContains(t, confirmation, "<script>")
	assert.Contains(t, confirmation, "&lt;script&gt;")
	assert.NotContains(t, confirmation, "<b>")
	assert.Contains(t, confirmation, "Shirt &amp; Co")

	owner := renderOwnerNotification(order, store, items)
	assert.NotContains(t, owner, "<script>")
	assert.Contains(t, owner, "&lt;script&gt;")
}

func TestTrackingURLScheme(t *testing.T) {
	order := testOrder()
	store := &model.Store{Slug: "acme"}

	d := &Dispatcher{cfg: &config.Config{Server: config.ServerConfig{Env: "development", SiteURL: "localhost:3000"}}}
	assert.Equal(t, "http://acme.localhost:3000/order?slug=ORD-00007", d.trackingURL(store, order))

	d = &Dispatcher{cfg: &config.Config{Server: config.ServerConfig{Env: "production", SiteURL: "convertlykit.com"}}}
	assert.Equal(t, "https://acme.convertlykit.com/order?slug=ORD-00007", d.trackingURL(store, order))
}

func newDispatcherDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedJob(t *testing.T, db *gorm.DB) model.Notification {
	t.Helper()

	store := model.Store{Name: "Acme", Email: "owner@acme.test", Owner: "user_acme", Slug: "acme"}
	require.NoError(t, db.Create(&store).Error)

	order := *testOrder()
	order.StoreID = store.ID
	order.State = "Greater London"
	order.Country = "United Kingdom"
	require.NoError(t, db.Create(&order).Error)

	job := model.Notification{
		OrderID: order.ID,
		Kind:    model.NotificationOrderConfirmation,
		Status:  model.NotificationStatusPending,
	}
	require.NoError(t, db.Create(&job).Error)
	return job
}

func newTestDispatcher(db *gorm.DB, mailURL string, log *zap.Logger) *Dispatcher {
	cfg := &config.Config{
		Server:  config.ServerConfig{Env: "development", SiteURL: "localhost:3000"},
		Mail:    config.MailConfig{Sender: "orders@convertlykit.com"},
		Storage: config.StorageConfig{PublicBaseURL: "https://images.test"},
	}
	return NewDispatcher(db, mailer.NewClient(mailURL, "test-key", zap.NewNop()), cfg, log, time.Minute)
}

func TestProcessMarksJobSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer server.Close()

	db := newDispatcherDB(t)
	job := seedJob(t, db)
	d := newTestDispatcher(db, server.URL, zap.NewNop())

	d.process(job)

	var got model.Notification
	require.NoError(t, db.First(&got, job.ID).Error)
	assert.Equal(t, model.NotificationStatusSent, got.Status)
	assert.Equal(t, 1, got.Attempts)
}

func TestProcessMarksJobFailedAtMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"name":"server_error","message":"delivery refused"}`))
	}))
	defer server.Close()

	db := newDispatcherDB(t)
	job := seedJob(t, db)
	job.Attempts = maxAttempts - 1
	require.NoError(t, db.Model(&model.Notification{}).Where("id = ?", job.ID).Update("attempts", job.Attempts).Error)
	d := newTestDispatcher(db, server.URL, zap.NewNop())

	d.process(job)

	var got model.Notification
	require.NoError(t, db.First(&got, job.ID).Error)
	assert.Equal(t, model.NotificationStatusFailed, got.Status)
	assert.Equal(t, maxAttempts, got.Attempts)
	assert.NotEmpty(t, got.LastError)
}

func TestProcessLogsStatusUpdateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer server.Close()

	db := newDispatcherDB(t)
	job := seedJob(t, db)
	require.NoError(t, db.Migrator().DropTable(&model.Notification{}))

	core, logs := observer.New(zap.ErrorLevel)
	d := newTestDispatcher(db, server.URL, zap.New(core))

	d.process(job)

	assert.Equal(t, 1, logs.FilterMessage("Notification status update failed after send").Len())
}
