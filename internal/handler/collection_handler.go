package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CollectionRequest defines the structure for collection create/update requests
type CollectionRequest struct {
	Name string `json:"name"`
}

// CreateCollection creates a collection with a store-unique slug derived
// from its name.
func CreateCollection(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req CollectionRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.GetDB()
	collectionSlug := slug.Make(req.Name)

	var count int64
	db.Model(&model.Collection{}).
		Where("store_id = ? AND slug = ?", store.ID, collectionSlug).
		Count(&count)
	if count > 0 {
		log.Warn("Collection slug already exists", zap.String("slug", collectionSlug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "collection already exists"})
	}

	collection := model.Collection{Name: req.Name, Slug: collectionSlug, StoreID: store.ID}
	if result := db.Create(&collection); result.Error != nil {
		log.Error("Failed to create collection", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create collection"})
	}

	prometheus.RecordCollectionOperation("create")
	log.Info("Collection created", zap.Uint("collection_id", collection.ID), zap.String("slug", collection.Slug))
	return c.JSON(http.StatusCreated, collection)
}

// ListCollections lists the caller's collections
func ListCollections(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var collections []model.Collection
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&collections); result.Error != nil {
		log.Error("Failed to retrieve collections", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve collections"})
	}

	return c.JSON(http.StatusOK, collections)
}

// GetCollectionBySlug retrieves one of the caller's collections by slug
func GetCollectionBySlug(c echo.Context) error {
	log := logger.FromEcho(c)
	collectionSlug := c.Param("slug")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var collection model.Collection
	result := database.GetDB().
		Where("store_id = ? AND slug = ?", store.ID, collectionSlug).
		First(&collection)
	if result.Error != nil {
		log.Warn("Collection not found", zap.String("slug", collectionSlug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	return c.JSON(http.StatusOK, collection)
}

// UpdateCollection renames a collection, re-deriving its slug
func UpdateCollection(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection ID"})
	}

	var req CollectionRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.GetDB()
	var collection model.Collection
	if result := db.Where("id = ? AND store_id = ?", id, store.ID).First(&collection); result.Error != nil {
		log.Warn("Collection not found", zap.Uint("collection_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	newSlug := slug.Make(req.Name)
	var count int64
	db.Model(&model.Collection{}).
		Where("store_id = ? AND slug = ? AND id != ?", store.ID, newSlug, collection.ID).
		Count(&count)
	if count > 0 {
		log.Warn("Collection slug already exists", zap.String("slug", newSlug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "collection already exists"})
	}

	collection.Name = req.Name
	collection.Slug = newSlug
	if result := db.Save(&collection); result.Error != nil {
		log.Error("Failed to update collection", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update collection"})
	}

	prometheus.RecordCollectionOperation("update")
	return c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes a collection and its memberships
func DeleteCollection(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection ID"})
	}

	db := database.GetDB()
	var collection model.Collection
	if result := db.Where("id = ? AND store_id = ?", id, store.ID).First(&collection); result.Error != nil {
		log.Warn("Collection not found for deletion", zap.Uint("collection_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", collection.ID).Delete(&model.CollectionProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&collection).Error
	})
	if err != nil {
		log.Error("Failed to delete collection", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete collection"})
	}

	prometheus.RecordCollectionOperation("delete")
	log.Info("Collection deleted", zap.Uint("collection_id", collection.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "collection deleted successfully"})
}

// CollectionProductRequest identifies a product for membership changes
type CollectionProductRequest struct {
	ProductID uint `json:"product_id"`
}

// AddProductToCollection adds a product to a collection. Both sides must
// belong to the caller's store.
func AddProductToCollection(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	collectionID, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection ID"})
	}

	var req CollectionProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	db := database.GetDB()

	var collection model.Collection
	if result := db.Where("id = ? AND store_id = ?", collectionID, store.ID).First(&collection); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	var product model.Product
	if result := db.Where("id = ? AND store_id = ?", req.ProductID, store.ID).First(&product); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var count int64
	db.Model(&model.CollectionProduct{}).
		Where("collection_id = ? AND product_id = ?", collection.ID, product.ID).
		Count(&count)
	if count > 0 {
		log.Warn("Product already in collection",
			zap.Uint("collection_id", collection.ID),
			zap.Uint("product_id", product.ID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "product already in collection"})
	}

	membership := model.CollectionProduct{CollectionID: collection.ID, ProductID: product.ID}
	if result := db.Create(&membership); result.Error != nil {
		log.Error("Failed to add product to collection", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add product to collection"})
	}

	prometheus.RecordCollectionOperation("add_product")
	return c.JSON(http.StatusCreated, membership)
}

// RemoveProductFromCollection removes a product from a collection
func RemoveProductFromCollection(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	collectionID, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection ID"})
	}

	var req CollectionProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	db := database.GetDB()

	var collection model.Collection
	if result := db.Where("id = ? AND store_id = ?", collectionID, store.ID).First(&collection); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	var product model.Product
	if result := db.Where("id = ? AND store_id = ?", req.ProductID, store.ID).First(&product); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	result := db.Where("collection_id = ? AND product_id = ?", collection.ID, product.ID).
		Delete(&model.CollectionProduct{})
	if result.Error != nil {
		log.Error("Failed to remove product from collection", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove product from collection"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not in collection"})
	}

	prometheus.RecordCollectionOperation("remove_product")
	return c.JSON(http.StatusOK, echo.Map{"message": "product removed from collection"})
}

// collectionProducts loads a collection's products with their main image.
func collectionProducts(db *gorm.DB, collectionID uint) ([]echo.Map, error) {
	var memberships []model.CollectionProduct
	if err := db.Where("collection_id = ?", collectionID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	page := make([]echo.Map, 0, len(memberships))
	for _, m := range memberships {
		var product model.Product
		if err := db.First(&product, m.ProductID).Error; err != nil {
			continue
		}
		entry := echo.Map{"product": product}
		if len(product.Images) > 0 {
			entry["main_image"] = imageURL(product.Images[0])
		}
		page = append(page, entry)
	}
	return page, nil
}

// ListCollectionProducts lists the products in one of the caller's collections
func ListCollectionProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	collectionID, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection ID"})
	}

	db := database.GetDB()
	var collection model.Collection
	if result := db.Where("id = ? AND store_id = ?", collectionID, store.ID).First(&collection); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	page, err := collectionProducts(db, collection.ID)
	if err != nil {
		log.Error("Failed to retrieve collection products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve collection products"})
	}

	return c.JSON(http.StatusOK, page)
}
