package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/internal/notification"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/pkg/paystack"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// PaystackWebhook ingests payment provider events. Every failure path is
// logged and answered 200, otherwise the provider retries indefinitely
// against a payload that will never parse. The pending to success transition
// happens at most once per order; the notification jobs it enqueues are
// deduplicated by (order, kind), so replays never double-send emails.
func PaystackWebhook(c echo.Context) error {
	log := logger.FromEcho(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		prometheus.RecordWebhookEvent("paystack", "read_error")
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Data.Reference == "" {
		prometheus.RecordWebhookEvent("paystack", "malformed")
		log.Warn("Malformed payment webhook payload", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	db := database.GetDB()
	var order model.Order
	if err := db.Where("reference = ?", event.Data.Reference).First(&order).Error; err != nil {
		prometheus.RecordWebhookEvent("paystack", "unknown_reference")
		log.Warn("Payment webhook for unknown reference",
			zap.String("reference", event.Data.Reference))
		return c.NoContent(http.StatusOK)
	}

	var store model.Store
	if err := db.First(&store, order.StoreID).Error; err != nil {
		prometheus.RecordWebhookEvent("paystack", "error")
		log.Error("Store missing for order",
			zap.Uint("order_id", order.ID),
			zap.Uint("store_id", order.StoreID))
		return c.NoContent(http.StatusOK)
	}

	// A missing header is treated the same as a bad one; header presence is
	// attacker-controlled, so skipping verification here would let anyone who
	// knows a reference flip the order.
	signature := c.Request().Header.Get("x-paystack-signature")
	if !paystack.VerifySignature(store.SecretKey, body, signature) {
		prometheus.RecordWebhookEvent("paystack", "bad_signature")
		log.Warn("Payment webhook signature mismatch",
			zap.String("reference", event.Data.Reference),
			zap.Uint("store_id", store.ID))
		return c.NoContent(http.StatusOK)
	}

	if order.Status == model.OrderStatusSuccess {
		prometheus.RecordWebhookEvent("paystack", "replay")
		log.Info("Payment webhook replay ignored",
			zap.String("reference", event.Data.Reference))
		return c.NoContent(http.StatusOK)
	}

	if event.Data.Status != model.OrderStatusSuccess {
		// Non-terminal provider statuses are recorded verbatim.
		if err := db.Model(&order).Update("status", event.Data.Status).Error; err != nil {
			log.Error("Failed to record order status",
				zap.String("reference", event.Data.Reference),
				zap.Error(err))
		}
		prometheus.RecordWebhookEvent("paystack", "status_update")
		return c.NoContent(http.StatusOK)
	}

	if err := db.Model(&order).Update("status", model.OrderStatusSuccess).Error; err != nil {
		prometheus.RecordWebhookEvent("paystack", "error")
		log.Error("Failed to mark order successful",
			zap.String("reference", event.Data.Reference),
			zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	if err := notification.EnqueueOrderEmails(db, order.ID); err != nil {
		log.Error("Failed to enqueue order emails",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}

	prometheus.RecordWebhookEvent("paystack", "success")
	log.Info("Order paid",
		zap.String("order_slug", order.Slug),
		zap.String("reference", event.Data.Reference),
		zap.Uint("store_id", store.ID))
	return c.NoContent(http.StatusOK)
}

type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string `json:"id"`
		FirstName             string `json:"first_name"`
		LastName              string `json:"last_name"`
		Username              string `json:"username"`
		ImageURL              string `json:"image_url"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
		EmailAddresses        []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e *clerkEvent) primaryEmail() string {
	for _, addr := range e.Data.EmailAddresses {
		if addr.ID == e.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ClerkWebhook ingests identity provider events and mirrors them into the
// user table. Signature verification is mandatory; processing errors after a
// verified signature are logged and answered 200 so the provider does not
// retry an event we already consumed.
func ClerkWebhook(c echo.Context) error {
	log := logger.FromEcho(c)

	headers := c.Request().Header
	if headers.Get("svix-id") == "" || headers.Get("svix-timestamp") == "" || headers.Get("svix-signature") == "" {
		prometheus.RecordWebhookEvent("clerk", "missing_headers")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing webhook headers"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		prometheus.RecordWebhookEvent("clerk", "read_error")
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook body"})
	}

	wh, err := svix.NewWebhook(appConfig.Webhook.ClerkSigningSecret)
	if err != nil {
		prometheus.RecordWebhookEvent("clerk", "error")
		log.Error("Failed to construct webhook verifier", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "webhook verification unavailable"})
	}
	if err := wh.Verify(body, headers); err != nil {
		prometheus.RecordWebhookEvent("clerk", "bad_signature")
		log.Warn("Identity webhook signature mismatch", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook signature"})
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Data.ID == "" {
		prometheus.RecordWebhookEvent("clerk", "malformed")
		log.Warn("Malformed identity webhook payload", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	db := database.GetDB()
	switch event.Type {
	case "user.created", "user.updated":
		user := model.User{
			ID:        event.Data.ID,
			Email:     event.primaryEmail(),
			FirstName: event.Data.FirstName,
			LastName:  event.Data.LastName,
			Username:  event.Data.Username,
			ImageURL:  event.Data.ImageURL,
		}
		if err := db.Save(&user).Error; err != nil {
			prometheus.RecordWebhookEvent("clerk", "error")
			log.Error("Failed to upsert user",
				zap.String("user_id", event.Data.ID),
				zap.Error(err))
			return c.NoContent(http.StatusOK)
		}
	case "user.deleted":
		if err := db.Delete(&model.User{}, "id = ?", event.Data.ID).Error; err != nil {
			prometheus.RecordWebhookEvent("clerk", "error")
			log.Error("Failed to delete user",
				zap.String("user_id", event.Data.ID),
				zap.Error(err))
			return c.NoContent(http.StatusOK)
		}
	default:
		prometheus.RecordWebhookEvent("clerk", "ignored")
		log.Info("Identity webhook event ignored", zap.String("type", event.Type))
		return c.NoContent(http.StatusOK)
	}

	prometheus.RecordWebhookEvent("clerk", "success")
	log.Info("Identity event processed",
		zap.String("type", event.Type),
		zap.String("user_id", event.Data.ID))
	return c.NoContent(http.StatusOK)
}
