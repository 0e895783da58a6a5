package handler

import (
	"net/http"
	"strconv"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name                  string                `json:"name"`
	AdditionalInformation string                `json:"additional_information"`
	Price                 float64               `json:"price"`
	Stock                 int                   `json:"stock"`
	IsUnspecified         bool                  `json:"is_unspecified"`
	UnitTypeID            uint                  `json:"unit_type_id"`
	CategoryID            *uint                 `json:"category_id"`
	Images                []string              `json:"images"`
	Variants              []model.Variant       `json:"variants"`
	Properties            []model.PropertyValue `json:"properties"`
	MetadataIDs           []uint                `json:"metadata_ids"`
}

func (r *ProductRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.Price <= 0 {
		return "price must be greater than zero"
	}
	// Stock must be positive unless the store explicitly opted out of tracking
	if !r.IsUnspecified && r.Stock <= 0 {
		return "stock must be positive unless marked unspecified"
	}
	return ""
}

// OptionDetail is a variant option with its image id resolved to a URL.
type OptionDetail struct {
	model.VariantOption
	Image string `json:"image,omitempty"`
}

// VariantDetail is a variant axis with resolved option images.
type VariantDetail struct {
	Name    string         `json:"name"`
	Options []OptionDetail `json:"options"`
}

// ResolvedProperty joins a product's property value with its definition.
type ResolvedProperty struct {
	model.PropertyValue
	Property *model.Property `json:"property,omitempty"`
}

// ProductDetail is the enriched product shape served to the dashboard and
// storefront: image URLs, category lineage, unit name, property definitions
// and metadata definitions resolved.
type ProductDetail struct {
	model.Product
	ImageURLs    []string           `json:"image_urls"`
	CategoryTree []model.Category   `json:"category_tree"`
	Unit         string             `json:"unit,omitempty"`
	PropertyList []ResolvedProperty `json:"property_list"`
	VariantList  []VariantDetail    `json:"variant_list"`
	Metadatas    []model.Metadata   `json:"metadatas"`
}

func productDetail(db *gorm.DB, product *model.Product) (*ProductDetail, error) {
	detail := &ProductDetail{Product: *product}

	detail.ImageURLs = make([]string, 0, len(product.Images))
	for _, id := range product.Images {
		detail.ImageURLs = append(detail.ImageURLs, imageURL(id))
	}

	if product.CategoryID != nil {
		tree, err := model.CategoryLineage(db, product.StoreID, *product.CategoryID)
		if err != nil {
			return nil, err
		}
		detail.CategoryTree = tree
	}

	var unit model.UnitType
	if err := db.First(&unit, product.UnitTypeID).Error; err == nil {
		detail.Unit = unit.Name
	}

	detail.PropertyList = make([]ResolvedProperty, 0, len(product.Properties))
	for _, pv := range product.Properties {
		resolved := ResolvedProperty{PropertyValue: pv}
		var prop model.Property
		if err := db.First(&prop, pv.PropertyID).Error; err == nil {
			resolved.Property = &prop
		}
		detail.PropertyList = append(detail.PropertyList, resolved)
	}

	detail.VariantList = make([]VariantDetail, 0, len(product.Variants))
	for _, axis := range product.Variants {
		vd := VariantDetail{Name: axis.Name, Options: make([]OptionDetail, 0, len(axis.Options))}
		for _, opt := range axis.Options {
			od := OptionDetail{VariantOption: opt}
			if opt.ImageID != "" {
				od.Image = imageURL(opt.ImageID)
			}
			vd.Options = append(vd.Options, od)
		}
		detail.VariantList = append(detail.VariantList, vd)
	}

	detail.Metadatas = make([]model.Metadata, 0, len(product.MetadataIDs))
	for _, id := range product.MetadataIDs {
		var md model.Metadata
		if err := db.First(&md, id).Error; err == nil {
			detail.Metadatas = append(detail.Metadatas, md)
		}
	}

	return detail, nil
}

// backfillPropertyOptions records new string property values on their
// property definitions so the storefront filters pick them up.
func backfillPropertyOptions(db *gorm.DB, log *zap.Logger, storeID uint, values []model.PropertyValue) {
	for _, pv := range values {
		text, ok := pv.Value.(string)
		if !ok {
			continue
		}

		var prop model.Property
		if err := db.Where("id = ? AND store_id = ?", pv.PropertyID, storeID).First(&prop).Error; err != nil {
			continue
		}

		known := false
		for _, opt := range prop.Options {
			if opt == text {
				known = true
				break
			}
		}
		if known {
			continue
		}

		prop.Options = append(prop.Options, text)
		if err := db.Save(&prop).Error; err != nil {
			log.Warn("Failed to backfill property option",
				zap.Uint("property_id", prop.ID),
				zap.String("option", text),
				zap.Error(err))
		}
	}
}

// ListProducts retrieves the caller's products with optional category filtering
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	db := database.GetDB()
	query := db.Where("store_id = ?", store.ID)

	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []model.Product
	if result := query.Find(&products); result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	log.Info("Products retrieved", zap.Int("count", len(products)), zap.Uint("store_id", store.ID))
	return c.JSON(http.StatusOK, products)
}

// GetProduct retrieves a single enriched product by ID
func GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	db := database.GetDB()
	var product model.Product
	if result := db.Where("id = ? AND store_id = ?", id, store.ID).First(&product); result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	detail, err := productDetail(db, &product)
	if err != nil {
		log.Error("Failed to resolve product detail", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve product"})
	}

	return c.JSON(http.StatusOK, detail)
}

// CreateProduct handles creating a new product
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Product validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	db := database.GetDB()
	product := model.Product{
		StoreID:               store.ID,
		Name:                  req.Name,
		AdditionalInformation: req.AdditionalInformation,
		Price:                 req.Price,
		Stock:                 req.Stock,
		IsUnspecified:         req.IsUnspecified,
		UnitTypeID:            req.UnitTypeID,
		CategoryID:            req.CategoryID,
		Images:                datatypes.NewJSONSlice(req.Images),
		Variants:              datatypes.NewJSONSlice(req.Variants),
		Properties:            datatypes.NewJSONSlice(req.Properties),
		MetadataIDs:           datatypes.NewJSONSlice(req.MetadataIDs),
	}

	if result := db.Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	backfillPropertyOptions(db, log, store.ID, req.Properties)

	prometheus.RecordProductOperation("create")
	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("store_id", store.ID))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Product validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	db := database.GetDB()
	var product model.Product
	if result := db.Where("id = ? AND store_id = ?", id, store.ID).First(&product); result.Error != nil {
		log.Warn("Product not found for update", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	product.Name = req.Name
	product.AdditionalInformation = req.AdditionalInformation
	product.Price = req.Price
	product.Stock = req.Stock
	product.IsUnspecified = req.IsUnspecified
	product.UnitTypeID = req.UnitTypeID
	product.CategoryID = req.CategoryID
	product.Images = datatypes.NewJSONSlice(req.Images)
	product.Variants = datatypes.NewJSONSlice(req.Variants)
	product.Properties = datatypes.NewJSONSlice(req.Properties)
	product.MetadataIDs = datatypes.NewJSONSlice(req.MetadataIDs)

	if result := db.Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	backfillPropertyOptions(db, log, store.ID, req.Properties)

	prometheus.RecordProductOperation("update")
	log.Info("Product updated", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product (soft delete)
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	result := database.GetDB().Where("store_id = ?", store.ID).Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted", zap.String("product_id", id), zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}

func parseUintParam(c echo.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
