package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryRequest defines the structure for category creation requests.
// Subcategories are created in the same call, parented to the new category.
type CategoryRequest struct {
	Name          string `json:"name"`
	SubCategories []struct {
		Name string `json:"name"`
	} `json:"sub_categories"`
}

// CreateCategory creates a root category plus its immediate subcategories
func CreateCategory(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.GetDB()
	category := model.Category{Name: req.Name, StoreID: store.ID}
	if result := db.Create(&category); result.Error != nil {
		log.Error("Failed to create category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	for _, sub := range req.SubCategories {
		child := model.Category{Name: sub.Name, StoreID: store.ID, ParentID: &category.ID}
		if result := db.Create(&child); result.Error != nil {
			log.Error("Failed to create subcategory",
				zap.String("name", sub.Name),
				zap.Uint("parent_id", category.ID),
				zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
		}
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.Int("subcategories", len(req.SubCategories)))
	return c.JSON(http.StatusCreated, category)
}

// CreateSubcategory creates a child category under an existing parent
func CreateSubcategory(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	parentID, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category ID"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.GetDB()
	var parent model.Category
	if result := db.Where("id = ? AND store_id = ?", parentID, store.ID).First(&parent); result.Error != nil {
		log.Warn("Parent category not found", zap.Uint("parent_id", parentID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	child := model.Category{Name: req.Name, StoreID: store.ID, ParentID: &parent.ID}
	if result := db.Create(&child); result.Error != nil {
		log.Error("Failed to create subcategory", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	log.Info("Subcategory created", zap.Uint("category_id", child.ID), zap.Uint("parent_id", parent.ID))
	return c.JSON(http.StatusCreated, child)
}

// ListCategories lists the caller's categories, filtered to roots by default
// or to children of ?parent_id.
func ListCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	db := database.GetDB()
	query := db.Where("store_id = ?", store.ID)
	if parentID := c.QueryParam("parent_id"); parentID != "" {
		query = query.Where("parent_id = ?", parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	var categories []model.Category
	if result := query.Find(&categories); result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetCategoryTree returns the lineage from the given category up to its root
func GetCategoryTree(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category ID"})
	}

	lineage, err := model.CategoryLineage(database.GetDB(), store.ID, categoryID)
	if err != nil {
		log.Error("Failed to resolve category tree", zap.Uint("category_id", categoryID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve category tree"})
	}
	if len(lineage) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, lineage)
}
