package notification

import (
	"github.com/convertly-dev/convertlykit/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Enqueue inserts a pending notification job for the order. The insert is a
// no-op if a job with the same (order, kind) already exists, which makes
// enqueueing from replayed webhooks safe.
func Enqueue(db *gorm.DB, orderID uint, kind string) error {
	job := model.Notification{
		OrderID: orderID,
		Kind:    kind,
		Status:  model.NotificationStatusPending,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(&job).Error
}

// EnqueueOrderEmails queues both post-payment emails for an order. The two
// jobs are independent; failure of one never blocks the other.
func EnqueueOrderEmails(db *gorm.DB, orderID uint) error {
	if err := Enqueue(db, orderID, model.NotificationOrderConfirmation); err != nil {
		return err
	}
	return Enqueue(db, orderID, model.NotificationOwnerNotification)
}
