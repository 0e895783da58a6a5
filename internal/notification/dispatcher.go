package notification

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/mailer"
	"github.com/convertly-dev/convertlykit/prometheus"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const maxAttempts = 5

// Dispatcher drains the notification queue in the background: it claims
// pending jobs, renders the email for each from the live order and store,
// and sends them independently through the mail client.
type Dispatcher struct {
	db       *gorm.DB
	mail     *mailer.Client
	cfg      *config.Config
	log      *zap.Logger
	interval time.Duration
	stop     chan struct{}
}

// NewDispatcher creates a dispatcher polling at the given interval.
func NewDispatcher(db *gorm.DB, mail *mailer.Client, cfg *config.Config, log *zap.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		db:       db,
		mail:     mail,
		cfg:      cfg,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run polls until Stop is called. Intended to run on its own goroutine.
func (d *Dispatcher) Run() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			if err := d.DispatchPending(); err != nil {
				d.log.Error("Notification dispatch cycle failed", zap.Error(err))
			}
		}
	}
}

// Stop terminates the Run loop.
func (d *Dispatcher) Stop() {
	close(d.stop)
}

// DispatchPending claims all pending jobs and processes them concurrently.
// Jobs that fail stay pending and are retried on later cycles until
// maxAttempts, then marked failed.
func (d *Dispatcher) DispatchPending() error {
	var jobs []model.Notification
	if err := d.db.Where("status = ?", model.NotificationStatusPending).Find(&jobs).Error; err != nil {
		return err
	}

	g := new(errgroup.Group)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			d.process(job)
			return nil
		})
	}
	return g.Wait()
}

func (d *Dispatcher) process(job model.Notification) {
	log := d.log.With(
		zap.Uint("notification_id", job.ID),
		zap.Uint("order_id", job.OrderID),
		zap.String("kind", job.Kind))

	err := d.send(job)
	if err == nil {
		if updateErr := d.db.Model(&model.Notification{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":   model.NotificationStatusSent,
			"attempts": gorm.Expr("attempts + 1"),
		}).Error; updateErr != nil {
			// The email went out but the job stays pending, so the next cycle
			// will resend it unless this update is retried out of band.
			log.Error("Notification status update failed after send", zap.Error(updateErr))
		}
		prometheus.RecordEmail(job.Kind, "sent")
		log.Info("Notification email sent")
		return
	}

	status := model.NotificationStatusPending
	if job.Attempts+1 >= maxAttempts {
		status = model.NotificationStatusFailed
	}
	if updateErr := d.db.Model(&model.Notification{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":     status,
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": err.Error(),
	}).Error; updateErr != nil {
		log.Error("Notification status update failed", zap.Error(updateErr))
	}
	prometheus.RecordEmail(job.Kind, "error")
	log.Error("Notification email failed", zap.Error(err), zap.String("new_status", status))
}

func (d *Dispatcher) send(job model.Notification) error {
	var order model.Order
	if err := d.db.First(&order, job.OrderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	var store model.Store
	if err := d.db.First(&store, order.StoreID).Error; err != nil {
		return fmt.Errorf("store not found: %w", err)
	}

	items, err := model.ResolveOrderItems(d.db, &order, func(imageID string) string {
		return d.cfg.Storage.PublicBaseURL + "/" + imageID
	})
	if err != nil {
		return err
	}

	switch job.Kind {
	case model.NotificationOrderConfirmation:
		return d.mail.Send(mailer.Message{
			From:    fmt.Sprintf("%s <%s>", store.Name, d.cfg.Mail.Sender),
			To:      []string{order.Email},
			Subject: "Order Confirmation",
			HTML:    renderConfirmation(&order, &store, items, d.trackingURL(&store, &order)),
		})
	case model.NotificationOwnerNotification:
		return d.mail.Send(mailer.Message{
			From:    fmt.Sprintf("ConvertlyKit <%s>", d.cfg.Mail.Sender),
			To:      []string{store.Email},
			Subject: "New Order",
			HTML:    renderOwnerNotification(&order, &store, items),
		})
	default:
		return fmt.Errorf("unknown notification kind: %s", job.Kind)
	}
}

func (d *Dispatcher) trackingURL(store *model.Store, order *model.Order) string {
	scheme := "http://"
	if d.cfg.Server.Env == "production" {
		scheme = "https://"
	}
	return fmt.Sprintf("%s%s.%s/order?slug=%s", scheme, store.Slug, d.cfg.Server.SiteURL, order.Slug)
}

func renderItemRows(items []model.ResolvedOrderItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%.2f</td></tr>",
			html.EscapeString(item.Name), item.Quantity, item.Price)
	}
	return b.String()
}

// Checkout accepts arbitrary names and addresses, so everything interpolated
// into the email markup goes through html.EscapeString.
func renderConfirmation(order *model.Order, store *model.Store, items []model.ResolvedOrderItem, trackingURL string) string {
	return fmt.Sprintf(
		`<h1>Thank you for your order from %s</h1>`+
			`<p>Order %s</p>`+
			`<table>%s</table>`+
			`<p>Subtotal: %.2f<br>Delivery: %.2f<br>Total: %.2f</p>`+
			`<p>Shipping to: %s %s, %s, %s %s</p>`+
			`<p><a href="%s">Track your order</a></p>`,
		html.EscapeString(store.Name), order.Slug, renderItemRows(items),
		order.Amount, order.Shipping, order.Amount+order.Shipping,
		html.EscapeString(order.FirstName), html.EscapeString(order.LastName),
		html.EscapeString(order.Line1), html.EscapeString(order.City), html.EscapeString(order.Zip),
		html.EscapeString(trackingURL))
}

func renderOwnerNotification(order *model.Order, store *model.Store, items []model.ResolvedOrderItem) string {
	return fmt.Sprintf(
		`<h1>New order on %s</h1>`+
			`<p>Order %s from %s %s (%s, %s)</p>`+
			`<table>%s</table>`+
			`<p>Subtotal: %.2f<br>Delivery: %.2f<br>Total: %.2f</p>`,
		html.EscapeString(store.Name), order.Slug,
		html.EscapeString(order.FirstName), html.EscapeString(order.LastName),
		html.EscapeString(order.Email), html.EscapeString(order.Phone),
		renderItemRows(items),
		order.Amount, order.Shipping, order.Amount+order.Shipping)
}
