package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InitializeOrderRequest is the public checkout payload. Shipping is a
// client-supplied pass-through amount.
type InitializeOrderRequest struct {
	StoreSlug   string `json:"storeSlug"`
	CallbackURL string `json:"callbackUrl"`

	Items []model.OrderItem `json:"items"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`

	DeliveryInfo *model.DeliveryInfo `json:"deliveryInfo"`
	Shipping     float64             `json:"shipping"`
}

func (r *InitializeOrderRequest) validate() []string {
	var details []string
	if r.StoreSlug == "" {
		details = append(details, "storeSlug is required")
	}
	if r.CallbackURL == "" {
		details = append(details, "callbackUrl is required")
	}
	if len(r.Items) == 0 {
		details = append(details, "items must not be empty")
	}
	for _, item := range r.Items {
		if item.ProductID == 0 {
			details = append(details, "item productId is required")
		}
		if item.Quantity <= 0 {
			details = append(details, "item quantity must be positive")
		}
	}
	if r.FirstName == "" {
		details = append(details, "firstName is required")
	}
	if r.LastName == "" {
		details = append(details, "lastName is required")
	}
	if r.Line1 == "" {
		details = append(details, "line1 is required")
	}
	if r.City == "" {
		details = append(details, "city is required")
	}
	if r.State == "" {
		details = append(details, "state is required")
	}
	if r.Zip == "" {
		details = append(details, "zip is required")
	}
	if r.Country == "" {
		details = append(details, "country is required")
	}
	if r.Phone == "" {
		details = append(details, "phone is required")
	}
	if r.Email == "" {
		details = append(details, "email is required")
	}
	if r.Shipping < 0 {
		details = append(details, "shipping must not be negative")
	}
	return details
}

// InitializeOrder is the public checkout entry point. It prices the cart from
// live product data, mints the store's next order slug, creates a pending
// order and initializes a hosted payment page with the store's own provider
// credentials.
func InitializeOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req InitializeOrderRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordCheckout("invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if details := req.validate(); len(details) > 0 {
		prometheus.RecordCheckout("invalid")
		log.Warn("Checkout validation failed", zap.Strings("details", details))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "invalid request data",
			"details": details,
		})
	}

	store, ok := storeBySlug(c, req.StoreSlug)
	if !ok {
		prometheus.RecordCheckout("store_not_found")
		return nil
	}

	db := database.GetDB()

	// Price every item from current product data before touching the order
	// tables, so a bad cart fails without side effects.
	var amount float64
	for _, item := range req.Items {
		var product model.Product
		if err := db.Where("id = ? AND store_id = ?", item.ProductID, store.ID).First(&product).Error; err != nil {
			prometheus.RecordCheckout("product_not_found")
			log.Warn("Checkout references unknown product",
				zap.Uint("product_id", item.ProductID),
				zap.Uint("store_id", store.ID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product not found"})
		}
		amount += product.UnitPriceFor(item.Variants) * float64(item.Quantity)
	}

	order := model.Order{
		StoreID:   store.ID,
		Items:     datatypes.NewJSONSlice(req.Items),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		Phone:     req.Phone,
		Email:     req.Email,
		Amount:    amount,
		Shipping:  req.Shipping,
		Status:    model.OrderStatusPending,
	}
	if req.DeliveryInfo != nil {
		info := datatypes.NewJSONType(*req.DeliveryInfo)
		order.DeliveryInfo = &info
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		slug, err := model.NextOrderSlug(tx, store.ID)
		if err != nil {
			return err
		}
		order.Slug = slug
		return tx.Create(&order).Error
	})
	if err != nil {
		prometheus.RecordCheckout("error")
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	tx, err := paymentClient.InitializeTransaction(store.SecretKey, req.Email, amount+req.Shipping, req.CallbackURL)
	if err != nil {
		prometheus.RecordCheckout("provider_error")
		log.Error("Failed to initialize transaction",
			zap.String("order_slug", order.Slug),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to initialize transaction"})
	}

	updates := map[string]interface{}{
		"url":         tx.AuthorizationURL,
		"access_code": tx.AccessCode,
		"reference":   tx.Reference,
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		prometheus.RecordCheckout("error")
		log.Error("Failed to persist transaction handle",
			zap.String("order_slug", order.Slug),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to initialize transaction"})
	}

	prometheus.RecordCheckout("success")
	log.Info("Order initialized",
		zap.String("order_slug", order.Slug),
		zap.String("reference", tx.Reference),
		zap.Float64("amount", amount),
		zap.Uint("store_id", store.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"accessCode": tx.AccessCode,
		"url":        tx.AuthorizationURL,
		"slug":       order.Slug,
	})
}
