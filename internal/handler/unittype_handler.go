package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateUnitType creates a named product unit for the caller's store
func CreateUnitType(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	unit := model.UnitType{Name: req.Name, StoreID: store.ID}
	if result := database.GetDB().Create(&unit); result.Error != nil {
		log.Error("Failed to create unit type", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create unit type"})
	}

	log.Info("Unit type created", zap.Uint("unit_type_id", unit.ID), zap.String("name", unit.Name))
	return c.JSON(http.StatusCreated, unit)
}

// ListUnitTypes lists the caller's unit types
func ListUnitTypes(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var units []model.UnitType
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&units); result.Error != nil {
		log.Error("Failed to retrieve unit types", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve unit types"})
	}

	return c.JSON(http.StatusOK, units)
}

// GetDefaultUnitType returns the store's seeded default unit
func GetDefaultUnitType(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var unit model.UnitType
	result := database.GetDB().
		Where("store_id = ? AND name = ?", store.ID, model.DefaultUnitTypeName).
		First(&unit)
	if result.Error != nil {
		log.Warn("Default unit type missing", zap.Uint("store_id", store.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "default unit type not found"})
	}

	return c.JSON(http.StatusOK, unit)
}
