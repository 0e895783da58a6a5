package model

import (
	"time"
)

// Notification kinds.
const (
	NotificationOrderConfirmation = "order_confirmation"
	NotificationOwnerNotification = "owner_notification"
)

// Notification statuses.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification is a queued email job. The (order_id, kind) unique index is
// the idempotency key: re-enqueueing the same job (e.g. a replayed payment
// webhook) is a no-op, so an order's emails are sent at most once per kind.
type Notification struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_notifications_order_kind"`
	Kind      string    `json:"kind" gorm:"type:varchar(30);not null;uniqueIndex:idx_notifications_order_kind"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	Attempts  int       `json:"attempts" gorm:"not null;default:0"`
	LastError string    `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
