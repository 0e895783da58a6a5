package main

import (
	"time"

	"github.com/convertly-dev/convertlykit/internal/handler"
	mid "github.com/convertly-dev/convertlykit/internal/middleware"
	"github.com/convertly-dev/convertlykit/internal/notification"
	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/database"
	"github.com/convertly-dev/convertlykit/pkg/jwtutil"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/pkg/mailer"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("convertlykit")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting convertlykit",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire handlers to configuration and the payment provider client
	handler.Init(appConfig)

	// Start the notification dispatcher
	mail := mailer.NewClient(appConfig.Mail.BaseURL, appConfig.Mail.APIKey, log)
	dispatcher := notification.NewDispatcher(database.GetDB(), mail, appConfig, log, 15*time.Second)
	go dispatcher.Run()
	defer dispatcher.Stop()
	log.Info("Notification dispatcher started")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Webhooks (verified by signature, not session)
	e.POST("/paystack", handler.PaystackWebhook)
	e.POST("/clerk", handler.ClerkWebhook)

	// Store API routes
	storeAPI := e.Group("/api/stores", mid.AuthMiddleware)
	storeAPI.POST("", handler.CreateStore)
	storeAPI.GET("/me", handler.GetMyStore)
	storeAPI.GET("/:slug", handler.GetStore)
	storeAPI.PUT("/:slug", handler.UpdateStore)

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", handler.ListProducts)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.POST("", handler.CreateProduct)
	productAPI.PUT("/:id", handler.UpdateProduct)
	productAPI.DELETE("/:id", handler.DeleteProduct)

	// Category API routes
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", handler.ListCategories)
	categoryAPI.POST("", handler.CreateCategory)
	categoryAPI.POST("/:id/subcategories", handler.CreateSubcategory)
	categoryAPI.GET("/:id/tree", handler.GetCategoryTree)

	// Property API routes
	propertyAPI := e.Group("/api/properties", mid.AuthMiddleware)
	propertyAPI.POST("", handler.CreateProperty)
	propertyAPI.GET("", handler.ListPropertiesByCategory)
	propertyAPI.GET("/:id", handler.GetProperty)

	// Metadata API routes
	metadataAPI := e.Group("/api/metadatas", mid.AuthMiddleware)
	metadataAPI.POST("", handler.CreateMetadata)
	metadataAPI.GET("", handler.ListMetadatas)
	metadataAPI.GET("/:id", handler.GetMetadata)
	metadataAPI.POST("/presets", handler.CreateMetadataPreset)
	metadataAPI.GET("/presets", handler.ListMetadataPresets)

	// Unit type API routes
	unitTypeAPI := e.Group("/api/unit-types", mid.AuthMiddleware)
	unitTypeAPI.POST("", handler.CreateUnitType)
	unitTypeAPI.GET("", handler.ListUnitTypes)
	unitTypeAPI.GET("/default", handler.GetDefaultUnitType)

	// Collection API routes
	collectionAPI := e.Group("/api/collections", mid.AuthMiddleware)
	collectionAPI.POST("", handler.CreateCollection)
	collectionAPI.GET("", handler.ListCollections)
	collectionAPI.GET("/by-slug/:slug", handler.GetCollectionBySlug)
	collectionAPI.PUT("/:id", handler.UpdateCollection)
	collectionAPI.DELETE("/:id", handler.DeleteCollection)
	collectionAPI.POST("/:id/products", handler.AddProductToCollection)
	collectionAPI.DELETE("/:id/products", handler.RemoveProductFromCollection)
	collectionAPI.GET("/:id/products", handler.ListCollectionProducts)

	// Content API routes
	contentAPI := e.Group("/api/contents", mid.AuthMiddleware)
	contentAPI.GET("", handler.GetContents)
	contentAPI.PUT("", handler.UpdateContents)
	contentAPI.POST("/upload-url", handler.GenerateUploadURL)

	// Order API routes
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.GET("", handler.ListOrders)
	orderAPI.GET("/:slug", handler.GetOrderBySlug)

	// Package API routes
	packageAPI := e.Group("/api/packages", mid.AuthMiddleware)
	packageAPI.POST("", handler.CreatePackage)
	packageAPI.GET("", handler.ListPackages)
	packageAPI.PUT("/:id", handler.UpdatePackage)
	packageAPI.DELETE("/:id", handler.DeletePackage)

	// Public storefront API - CORS allowlist, no session auth
	public := e.Group("", middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: appConfig.Server.ClientOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
	}))
	public.GET("/api/products/get-products-by-store-slug", handler.GetStorefrontProducts)
	public.GET("/api/products/get-product-by-id", handler.GetStorefrontProduct)
	public.GET("/api/products/get-products-by-ids", handler.GetStorefrontProductsByIDs)
	public.GET("/api/collections/get-filters", handler.GetStorefrontFilters)
	public.GET("/api/collections/get-collection-by-slug-and-store-slug", handler.GetStorefrontCollection)
	public.GET("/api/collections/get-products-by-collection-slug-and-store-slug", handler.GetStorefrontCollectionProducts)
	public.GET("/api/collections/get-category-by-id-and-store-slug", handler.GetStorefrontCategory)
	public.GET("/api/collections/get-products-by-category-id-and-store-slug", handler.GetStorefrontCategoryProducts)
	public.GET("/api/categories/get-categories-by-store-slug", handler.GetStorefrontCategories)
	public.GET("/api/categories/get-sub-categories-by-parent-id-and-store-slug", handler.GetStorefrontSubCategories)
	public.GET("/api/delivery/info", handler.GetDeliveryInfo)
	public.GET("/api/contents/get-contents-by-store-slug", handler.GetStorefrontContents)
	public.GET("/api/contents/get-image-url", handler.GetImageURL)
	public.GET("/api/orders/get-order-by-reference-or-slug", handler.GetOrderByReferenceOrSlug)
	public.POST("/api/orders/initialize", handler.InitializeOrder)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
