package handler

import (
	"net/http"

	"github.com/convertly-dev/convertlykit/internal/middleware"
	"github.com/convertly-dev/convertlykit/internal/model"
	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/pkg/paystack"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	appConfig     *config.Config
	paymentClient *paystack.Client
)

// Init wires the handler package to configuration and the payment provider
// client. Must be called once before routes are served.
func Init(cfg *config.Config) {
	appConfig = cfg
	paymentClient = paystack.NewClient(cfg.Paystack.BaseURL, logger.GetLogger())
}

// imageURL resolves an opaque storage id to its public URL.
func imageURL(imageID string) string {
	return appConfig.Storage.PublicBaseURL + "/" + imageID
}

// requireStore resolves the calling identity's store. Tenancy is always
// derived from the token subject, never from request input. Writes the error
// response itself; callers return nil when ok is false.
func requireStore(c echo.Context) (*model.Store, bool) {
	log := logger.FromEcho(c)

	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		log.Warn("Missing identity subject in context")
		c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return nil, false
	}

	var store model.Store
	if err := database.GetDB().Where("owner = ?", subject).First(&store).Error; err != nil {
		log.Warn("No store for identity", zap.String("subject", subject), zap.Error(err))
		c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		return nil, false
	}

	return &store, true
}

// storeBySlug resolves a store by its public slug for unauthenticated
// storefront reads. Writes a 404 when missing.
func storeBySlug(c echo.Context, slug string) (*model.Store, bool) {
	var store model.Store
	if err := database.GetDB().Where("slug = ?", slug).First(&store).Error; err != nil {
		logger.FromEcho(c).Warn("Store not found", zap.String("store_slug", slug))
		c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		return nil, false
	}
	return &store, true
}
