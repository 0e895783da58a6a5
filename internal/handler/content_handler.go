package handler

import (
	"encoding/json"
	"net/http"

	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// GetContents returns the caller's storefront content blocks
func GetContents(c echo.Context) error {
	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	contents := store.Contents
	if contents == nil {
		contents = datatypes.JSON([]byte("[]"))
	}
	return c.JSON(http.StatusOK, echo.Map{"contents": contents})
}

// UpdateContents replaces the caller's storefront content blocks. The blocks
// are stored as an opaque JSON document and rendered client side.
func UpdateContents(c echo.Context) error {
	log := logger.FromEcho(c)

	store, ok := requireStore(c)
	if !ok {
		return nil
	}

	var body struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := c.Bind(&body); err != nil || len(body.Contents) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contents is required"})
	}
	if !json.Valid(body.Contents) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contents must be valid JSON"})
	}

	store.Contents = datatypes.JSON(body.Contents)
	if result := database.GetDB().Model(store).Update("contents", store.Contents); result.Error != nil {
		log.Error("Failed to update contents", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update contents"})
	}

	log.Info("Store contents updated", zap.Uint("store_id", store.ID))
	return c.JSON(http.StatusOK, echo.Map{"contents": store.Contents})
}

// GenerateUploadURL mints a fresh image identifier and the URL the client
// should PUT the file to. The storage service accepts the upload and serves
// the object at the public URL afterwards.
func GenerateUploadURL(c echo.Context) error {
	if _, ok := requireStore(c); !ok {
		return nil
	}

	imageID := uuid.New().String()
	return c.JSON(http.StatusOK, echo.Map{
		"image_id":   imageID,
		"upload_url": appConfig.Storage.UploadBaseURL + "/" + imageID,
	})
}

// GetImageURL resolves a stored image identifier to its public URL
func GetImageURL(c echo.Context) error {
	imageID := c.QueryParam("imageId")
	if imageID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imageId is required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": imageURL(imageID)})
}
