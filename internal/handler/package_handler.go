package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PackageRequest defines the structure for package create/update requests
type PackageRequest struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
	Type   string  `json:"type"`
}

func (r *PackageRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	switch r.Type {
	case model.PackageTypeBox, model.PackageTypeEnvelope, model.PackageTypeSoft:
	default:
		return "invalid package type"
	}
	if r.Width <= 0 || r.Height <= 0 || r.Length <= 0 || r.Weight <= 0 {
		return "dimensions and weight must be positive"
	}
	return ""
}

// CreatePackage creates a shipping package preset
func CreatePackage(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	pkg := model.Package{
		Name:    req.Name,
		Width:   req.Width,
		Height:  req.Height,
		Length:  req.Length,
		Weight:  req.Weight,
		Type:    req.Type,
		StoreID: store.ID,
	}
	if result := database.GetDB().Create(&pkg); result.Error != nil {
		log.Error("Failed to create package", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create package"})
	}

	log.Info("Package created", zap.Uint("package_id", pkg.ID))
	return c.JSON(http.StatusCreated, pkg)
}

// ListPackages lists the caller's package presets
func ListPackages(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var packages []model.Package
	if result := database.GetDB().Where("store_id = ?", store.ID).Find(&packages); result.Error != nil {
		log.Error("Failed to retrieve packages", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve packages"})
	}

	return c.JSON(http.StatusOK, packages)
}

// UpdatePackage replaces a package preset's fields
func UpdatePackage(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid package ID"})
	}

	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	db := database.GetDB()
	var pkg model.Package
	if result := db.Where("id = ? AND store_id = ?", id, store.ID).First(&pkg); result.Error != nil {
		log.Warn("Package not found", zap.Uint("package_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "package not found"})
	}

	pkg.Name = req.Name
	pkg.Width = req.Width
	pkg.Height = req.Height
	pkg.Length = req.Length
	pkg.Weight = req.Weight
	pkg.Type = req.Type
	if result := db.Save(&pkg); result.Error != nil {
		log.Error("Failed to update package", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update package"})
	}

	return c.JSON(http.StatusOK, pkg)
}

// DeletePackage removes a package preset
func DeletePackage(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid package ID"})
	}

	result := database.GetDB().
		Where("id = ? AND store_id = ?", id, store.ID).
		Delete(&model.Package{})
	if result.Error != nil {
		log.Error("Failed to delete package", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete package"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "package not found"})
	}

	log.Info("Package deleted", zap.Uint("package_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "package deleted successfully"})
}
