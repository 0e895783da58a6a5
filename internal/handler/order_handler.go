package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderDetail is an order with its line items resolved against live
// product data.
type OrderDetail struct {
	model.Order
	ResolvedItems []model.ResolvedOrderItem `json:"resolved_items"`
}

func orderDetail(c echo.Context, order *model.Order) (*OrderDetail, bool) {
	log := logger.FromEcho(c)

	items, err := model.ResolveOrderItems(database.GetDB(), order, imageURL)
	if err != nil {
		log.Error("Failed to resolve order items",
			zap.Uint("order_id", order.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve order items"})
		return nil, false
	}
	return &OrderDetail{Order: *order, ResolvedItems: items}, true
}

// ListOrders lists the caller's paid orders, newest first
func ListOrders(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var orders []model.Order
	result := database.GetDB().
		Where("store_id = ? AND status = ?", store.ID, model.OrderStatusSuccess).
		Order("created_at DESC").
		Find(&orders)
	if result.Error != nil {
		log.Error("Failed to retrieve orders", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve orders"})
	}

	page := make([]OrderDetail, 0, len(orders))
	for i := range orders {
		detail, ok := orderDetail(c, &orders[i])
		if !ok {
			return nil
		}
		page = append(page, *detail)
	}

	return c.JSON(http.StatusOK, page)
}

// GetOrderBySlug retrieves one of the caller's orders by its slug
func GetOrderBySlug(c echo.Context) error {
	log := logger.FromEcho(c)
	orderSlug := c.Param("slug")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var order model.Order
	result := database.GetDB().
		Where("store_id = ? AND slug = ?", store.ID, orderSlug).
		First(&order)
	if result.Error != nil {
		log.Warn("Order not found", zap.String("slug", orderSlug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	detail, ok := orderDetail(c, &order)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, detail)
}
