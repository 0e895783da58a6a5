package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/middleware"
	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// StoreRequest defines the structure for store creation requests
type StoreRequest struct {
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Description     string                 `json:"description"`
	Slug            string                 `json:"slug"`
	DeliveryOptions []model.DeliveryOption `json:"delivery_options"`
	PublicKey       string                 `json:"public_key"`
	SecretKey       string                 `json:"secret_key"`
}

// StoreUpdateRequest defines the structure for store settings updates.
// Pointer fields distinguish "absent" from "set to zero value".
type StoreUpdateRequest struct {
	Name            *string                 `json:"name"`
	Email           *string                 `json:"email"`
	Description     *string                 `json:"description"`
	DeliveryOptions *[]model.DeliveryOption `json:"delivery_options"`
	PublicKey       *string                 `json:"public_key"`
	SecretKey       *string                 `json:"secret_key"`
	LogoID          *string                 `json:"logo_id"`
}

// CreateStore handles onboarding completion: one store per identity, unique
// slug, seeded with a default unit type.
func CreateStore(c echo.Context) error {
	log := logger.FromEcho(c)

	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		log.Warn("Missing identity subject in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.Slug == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and slug are required"})
	}

	db := database.GetDB()

	// One store per owner
	var count int64
	db.Model(&model.Store{}).Where("owner = ?", subject).Count(&count)
	if count > 0 {
		log.Warn("Identity already owns a store", zap.String("subject", subject))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already has a store"})
	}

	// Slug is the store's public identity and must be globally unique
	db.Model(&model.Store{}).Where("slug = ?", req.Slug).Count(&count)
	if count > 0 {
		log.Warn("Store slug already taken", zap.String("slug", req.Slug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already taken"})
	}

	store := model.Store{
		Name:            req.Name,
		Email:           req.Email,
		Description:     req.Description,
		Owner:           subject,
		Slug:            req.Slug,
		DeliveryOptions: datatypes.NewJSONSlice(req.DeliveryOptions),
		PublicKey:       req.PublicKey,
		SecretKey:       req.SecretKey,
	}
	if result := db.Create(&store); result.Error != nil {
		log.Error("Failed to create store", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create store"})
	}

	// Seed the default unit type for the new store
	unit := model.UnitType{Name: model.DefaultUnitTypeName, StoreID: store.ID}
	if result := db.Create(&unit); result.Error != nil {
		log.Error("Failed to seed default unit type", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create store"})
	}

	prometheus.RecordStoreOperation("create")
	log.Info("Store created",
		zap.Uint("store_id", store.ID),
		zap.String("slug", store.Slug),
		zap.String("owner", store.Owner))
	return c.JSON(http.StatusCreated, echo.Map{"slug": store.Slug})
}

// GetMyStore returns the calling identity's store, or 404 if onboarding has
// not completed.
func GetMyStore(c echo.Context) error {
	store, ok := requireStore(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, store)
}

// GetStore returns the store only when the slug belongs to the caller.
func GetStore(c echo.Context) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}
	if store.Slug != slug {
		// Don't reveal whether another tenant's slug exists
		log.Warn("Slug does not match caller's store", zap.String("slug", slug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}

	return c.JSON(http.StatusOK, store)
}

// UpdateStore handles settings mutations: profile, delivery options and
// payment credentials.
func UpdateStore(c echo.Context) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}
	if store.Slug != slug {
		log.Warn("Slug does not match caller's store", zap.String("slug", slug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}

	var req StoreUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DeliveryOptions != nil {
		updates["delivery_options"] = datatypes.NewJSONSlice(*req.DeliveryOptions)
	}
	if req.PublicKey != nil {
		updates["public_key"] = *req.PublicKey
	}
	if req.SecretKey != nil {
		updates["secret_key"] = *req.SecretKey
	}
	if req.LogoID != nil {
		updates["logo_id"] = *req.LogoID
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusOK, store)
	}

	if result := database.GetDB().Model(store).Updates(updates); result.Error != nil {
		log.Error("Failed to update store", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update store"})
	}

	prometheus.RecordStoreOperation("update")
	log.Info("Store updated", zap.Uint("store_id", store.ID))
	return c.JSON(http.StatusOK, store)
}
