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

// MetadataRequest defines the structure for metadata creation requests
type MetadataRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func validMetadataType(t string) bool {
	switch t {
	case model.MetadataTypeString, model.MetadataTypeNumber, model.MetadataTypeArray, model.MetadataTypeImage:
		return true
	}
	return false
}

// CreateMetadata creates a metadata definition for the caller's store
func CreateMetadata(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req MetadataRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || !validMetadataType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a valid type are required"})
	}

	metadata := model.Metadata{Name: req.Name, StoreID: store.ID, Type: req.Type}
	if result := database.GetDB().Create(&metadata); result.Error != nil {
		log.Error("Failed to create metadata", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create metadata"})
	}

	log.Info("Metadata created", zap.Uint("metadata_id", metadata.ID), zap.String("name", metadata.Name))
	return c.JSON(http.StatusCreated, metadata)
}

// ListMetadatas lists the caller's metadata definitions
func ListMetadatas(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var metadatas []model.Metadata
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&metadatas); result.Error != nil {
		log.Error("Failed to retrieve metadata", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve metadata"})
	}

	return c.JSON(http.StatusOK, metadatas)
}

// GetMetadata retrieves a single metadata definition. Cross-tenant reads
// answer not-found, never forbidden.
func GetMetadata(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var metadata model.Metadata
	result := database.GetDB().Where("id = ? AND store_id = ?", id, store.ID).First(&metadata)
	if result.Error != nil {
		log.Warn("Metadata not found", zap.String("metadata_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "metadata not found"})
	}

	return c.JSON(http.StatusOK, metadata)
}

// MetadataPresetRequest defines the structure for preset creation requests
type MetadataPresetRequest struct {
	Name        string `json:"name"`
	MetadataIDs []uint `json:"metadata_ids"`
}

// CreateMetadataPreset creates a named grouping of metadata definitions
func CreateMetadataPreset(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req MetadataPresetRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.GetDB()

	// Every referenced metadata must belong to the caller's store
	var count int64
	db.Model(&model.Metadata{}).
		Where("id IN ? AND store_id = ?", req.MetadataIDs, store.ID).
		Count(&count)
	if count != int64(len(req.MetadataIDs)) {
		log.Warn("Preset references unknown metadata", zap.Uints("metadata_ids", req.MetadataIDs))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "metadata not found"})
	}

	preset := model.MetadataPreset{
		Name:        req.Name,
		StoreID:     store.ID,
		MetadataIDs: datatypes.NewJSONSlice(req.MetadataIDs),
	}
	if result := db.Create(&preset); result.Error != nil {
		log.Error("Failed to create metadata preset", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create metadata preset"})
	}

	log.Info("Metadata preset created", zap.Uint("preset_id", preset.ID))
	return c.JSON(http.StatusCreated, preset)
}

// ListMetadataPresets lists the caller's metadata presets
func ListMetadataPresets(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var presets []model.MetadataPreset
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&presets); result.Error != nil {
		log.Error("Failed to retrieve metadata presets", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve metadata presets"})
	}

	return c.JSON(http.StatusOK, presets)
}
