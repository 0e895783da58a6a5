package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// StorefrontProduct is the public product shape: the product plus its first
// image resolved to a URL.
type StorefrontProduct struct {
	model.Product
	MainImage string `json:"main_image,omitempty"`
}

func storefrontProduct(product model.Product) StorefrontProduct {
	sp := StorefrontProduct{Product: product}
	if len(product.Images) > 0 {
		sp.MainImage = imageURL(product.Images[0])
	}
	return sp
}

func storefrontProducts(products []model.Product) []StorefrontProduct {
	page := make([]StorefrontProduct, 0, len(products))
	for _, p := range products {
		page = append(page, storefrontProduct(p))
	}
	return page
}

// PropertyFilter narrows a storefront product listing to products whose
// property value is in the allowed set. Key is a property id.
type PropertyFilter struct {
	Key   uint     `json:"key"`
	Value []string `json:"value"`
}

// parsePropertyFilters decodes the optional `properties` query param, a JSON
// array of filters. An absent param means no filtering.
func parsePropertyFilters(c echo.Context) ([]PropertyFilter, bool) {
	raw := c.QueryParam("properties")
	if raw == "" {
		return nil, true
	}
	var filters []PropertyFilter
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil, false
	}
	return filters, true
}

// matchesPropertyFilters applies every filter conjunctively. Empty value sets
// pass; a filter whose property the product lacks fails; non-string values
// are not filterable and pass.
func matchesPropertyFilters(product *model.Product, filters []PropertyFilter) bool {
	for _, f := range filters {
		if len(f.Value) == 0 {
			continue
		}

		var match *model.PropertyValue
		for i := range product.Properties {
			if product.Properties[i].PropertyID == f.Key {
				match = &product.Properties[i]
				break
			}
		}
		if match == nil {
			return false
		}

		text, isString := match.Value.(string)
		if !isString {
			continue
		}

		allowed := false
		for _, v := range f.Value {
			if v == text {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

func filterStorefrontProducts(products []model.Product, filters []PropertyFilter) []StorefrontProduct {
	page := make([]StorefrontProduct, 0, len(products))
	for i := range products {
		if !matchesPropertyFilters(&products[i], filters) {
			continue
		}
		page = append(page, storefrontProduct(products[i]))
	}
	return page
}

// GetStorefrontProducts lists a store's products by store slug
func GetStorefrontProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var products []model.Product
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&products); result.Error != nil {
		log.Error("Failed to retrieve storefront products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, storefrontProducts(products))
}

// GetStorefrontProduct retrieves one enriched product by id
func GetStorefrontProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}

	db := database.GetDB()
	var product model.Product
	if result := db.First(&product, "id = ?", id); result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	detail, err := productDetail(db, &product)
	if err != nil {
		log.Error("Failed to resolve product detail", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve product"})
	}

	return c.JSON(http.StatusOK, detail)
}

// GetStorefrontProductsByIDs retrieves products for a comma separated id list
func GetStorefrontProductsByIDs(c echo.Context) error {
	log := logger.FromEcho(c)

	raw := c.QueryParam("ids")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids is required"})
	}
	ids := strings.Split(raw, ",")

	var products []model.Product
	if result := database.GetDB().Where("id IN ?", ids).Find(&products); result.Error != nil {
		log.Error("Failed to retrieve products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, storefrontProducts(products))
}

// GetStorefrontFilters returns the store's property definitions, which back
// the storefront's filter sidebar.
func GetStorefrontFilters(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var properties []model.Property
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&properties); result.Error != nil {
		log.Error("Failed to retrieve filters", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve filters"})
	}

	return c.JSON(http.StatusOK, properties)
}

// GetStorefrontCollection retrieves a collection by its slug and store slug
func GetStorefrontCollection(c echo.Context) error {
	storeSlug := c.QueryParam("storeSlug")
	collectionSlug := c.QueryParam("slug")
	if storeSlug == "" || collectionSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug and slug are required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var collection model.Collection
	result := database.GetDB().
		Where("store_id = ? AND slug = ?", store.ID, collectionSlug).
		First(&collection)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	return c.JSON(http.StatusOK, collection)
}

// GetStorefrontCollectionProducts lists a collection's products with optional
// property filters.
func GetStorefrontCollectionProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	collectionSlug := c.QueryParam("collectionSlug")
	if storeSlug == "" || collectionSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug and collectionSlug are required"})
	}

	filters, ok := parsePropertyFilters(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid properties filter"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	db := database.GetDB()
	var collection model.Collection
	result := db.Where("store_id = ? AND slug = ?", store.ID, collectionSlug).First(&collection)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
	}

	var memberships []model.CollectionProduct
	if err := db.Where("collection_id = ?", collection.ID).Find(&memberships).Error; err != nil {
		log.Error("Failed to retrieve collection products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve collection products"})
	}

	productIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		productIDs = append(productIDs, m.ProductID)
	}

	var products []model.Product
	if len(productIDs) > 0 {
		if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			log.Error("Failed to retrieve collection products", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve collection products"})
		}
	}

	return c.JSON(http.StatusOK, filterStorefrontProducts(products, filters))
}

// GetStorefrontCategory retrieves a category by id, scoped to the store
func GetStorefrontCategory(c echo.Context) error {
	storeSlug := c.QueryParam("storeSlug")
	categoryID := c.QueryParam("categoryId")
	if storeSlug == "" || categoryID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug and categoryId are required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var category model.Category
	result := database.GetDB().
		Where("id = ? AND store_id = ?", categoryID, store.ID).
		First(&category)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, category)
}

// GetStorefrontCategoryProducts lists products under a category. Leaf
// categories list their own products; root categories aggregate their
// immediate subcategories' products. Optional property filters apply.
func GetStorefrontCategoryProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	categoryID := c.QueryParam("categoryId")
	if storeSlug == "" || categoryID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug and categoryId are required"})
	}

	filters, ok := parsePropertyFilters(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid properties filter"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	db := database.GetDB()
	var category model.Category
	result := db.Where("id = ? AND store_id = ?", categoryID, store.ID).First(&category)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	var products []model.Product
	if category.ParentID != nil {
		err := db.Where("category_id = ?", category.ID).
			Order("created_at DESC").
			Find(&products).Error
		if err != nil {
			log.Error("Failed to retrieve category products", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
		}
	} else {
		var subIDs []uint
		err := db.Model(&model.Category{}).
			Where("store_id = ? AND parent_id = ?", store.ID, category.ID).
			Pluck("id", &subIDs).Error
		if err != nil {
			log.Error("Failed to retrieve subcategories", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
		}
		if len(subIDs) > 0 {
			err = db.Where("category_id IN ?", subIDs).
				Order("created_at DESC").
				Find(&products).Error
			if err != nil {
				log.Error("Failed to retrieve category products", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
			}
		}
	}

	return c.JSON(http.StatusOK, filterStorefrontProducts(products, filters))
}

// GetStorefrontCategories lists a store's root categories by store slug
func GetStorefrontCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var categories []model.Category
	result := database.GetDB().
		Where("store_id = ? AND parent_id IS NULL", store.ID).
		Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetStorefrontSubCategories lists a category's direct children
func GetStorefrontSubCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	storeSlug := c.QueryParam("storeSlug")
	parentID := c.QueryParam("parentId")
	if storeSlug == "" || parentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug and parentId are required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	var categories []model.Category
	result := database.GetDB().
		Where("store_id = ? AND parent_id = ?", store.ID, parentID).
		Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve subcategories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve subcategories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetDeliveryInfo returns a store's configured delivery options
func GetDeliveryInfo(c echo.Context) error {
	storeSlug := c.QueryParam("storeSlug")
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	options := store.DeliveryOptions
	if options == nil {
		options = datatypes.JSONSlice[model.DeliveryOption]{}
	}
	return c.JSON(http.StatusOK, options)
}

// GetStorefrontContents returns a store's content blocks by store slug
func GetStorefrontContents(c echo.Context) error {
	storeSlug := c.QueryParam("storeSlug")
	if storeSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required"})
	}

	store, ok := storeBySlug(c, storeSlug)
	if !ok {
		return nil
	}

	contents := store.Contents
	if contents == nil {
		contents = datatypes.JSON([]byte("[]"))
	}
	return c.JSON(http.StatusOK, echo.Map{"contents": contents})
}

// GetOrderByReferenceOrSlug resolves an order by payment reference or slug,
// used by the storefront's order tracking page.
func GetOrderByReferenceOrSlug(c echo.Context) error {
	log := logger.FromEcho(c)

	reference := c.QueryParam("reference")
	orderSlug := c.QueryParam("slug")
	if reference == "" && orderSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "either reference or slug is required"})
	}

	db := database.GetDB()
	var order model.Order
	var result error
	if reference != "" {
		result = db.Where("reference = ?", reference).First(&order).Error
	} else {
		// Order slugs are sequential per store, so a bare slug lookup would
		// hand back another store's order.
		storeSlug := c.QueryParam("storeSlug")
		if storeSlug == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "storeSlug is required when looking up by slug"})
		}
		store, ok := storeBySlug(c, storeSlug)
		if !ok {
			return nil
		}
		result = db.Where("store_id = ? AND slug = ?", store.ID, orderSlug).First(&order).Error
	}
	if result != nil {
		log.Warn("Order not found",
			zap.String("reference", reference),
			zap.String("slug", orderSlug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	detail, ok := orderDetail(c, &order)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, detail)
}
