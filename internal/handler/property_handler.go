package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PropertyRequest defines the structure for property creation requests
type PropertyRequest struct {
	Name       string   `json:"name"`
	CategoryID uint     `json:"category_id"`
	Type       string   `json:"type"`
	Options    []string `json:"options"`
}

func validPropertyType(t string) bool {
	switch t {
	case model.PropertyTypeString, model.PropertyTypeNumber, model.PropertyTypeArray:
		return true
	}
	return false
}

// CreateProperty creates a property definition on one of the caller's categories
func CreateProperty(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || !validPropertyType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a valid type are required"})
	}

	db := database.GetDB()
	var category model.Category
	if result := db.Where("id = ? AND store_id = ?", req.CategoryID, store.ID).First(&category); result.Error != nil {
		log.Warn("Category not found for property", zap.Uint("category_id", req.CategoryID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	property := model.Property{
		Name:       req.Name,
		StoreID:    store.ID,
		CategoryID: category.ID,
		Type:       req.Type,
		Options:    datatypes.NewJSONSlice(req.Options),
	}
	if result := db.Create(&property); result.Error != nil {
		log.Error("Failed to create property", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create property"})
	}

	log.Info("Property created", zap.Uint("property_id", property.ID), zap.String("name", property.Name))
	return c.JSON(http.StatusCreated, property)
}

// ListPropertiesByCategory lists property definitions for a category
func ListPropertiesByCategory(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	categoryID := c.QueryParam("category_id")
	if categoryID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id is required"})
	}

	var properties []model.Property
	result := database.GetDB().
		Where("store_id = ? AND category_id = ?", store.ID, categoryID).
		Find(&properties)
	if result.Error != nil {
		log.Error("Failed to retrieve properties", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve properties"})
	}

	return c.JSON(http.StatusOK, properties)
}

// GetProperty retrieves a single property definition
func GetProperty(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var property model.Property
	result := database.GetDB().Where("id = ? AND store_id = ?", id, store.ID).First(&property)
	if result.Error != nil {
		log.Warn("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}

	return c.JSON(http.StatusOK, property)
}
