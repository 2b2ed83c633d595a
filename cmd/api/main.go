package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/cache"
	"github.com/suburbmates/suburbmates-api/internal/config"
	"github.com/suburbmates/suburbmates-api/internal/database"
	"github.com/suburbmates/suburbmates-api/internal/handler"
	"github.com/suburbmates/suburbmates-api/internal/middleware"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/worker"
	"github.com/suburbmates/suburbmates-api/pkg/resend"
)

// main is the application entrypoint for the SuburbMates API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting suburbmates api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize reservation cache
	resCache := cache.NewReservationCache(redisClient)

	// 4. Initialize outbound clients
	mailer := resend.NewClient(cfg.Resend.APIKey, cfg.Resend.FromAddress)

	// 5. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	regionRepo := repository.NewRegionRepository(db)
	slotRepo := repository.NewFeaturedSlotRepository(db)
	queueRepo := repository.NewFeaturedQueueRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(vendorRepo)
	adminAuthSvc := service.NewAdminAuthService(userRepo)
	paymentSvc := service.NewPaymentService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	notificationSvc := service.NewNotificationService(mailer)
	vendorSvc := service.NewVendorService(userRepo, vendorRepo, paymentSvc)
	productSvc := service.NewProductService(productRepo)
	tierSvc := service.NewTierService(vendorRepo, productRepo, userRepo, notificationSvc)
	featuredSvc := service.NewFeaturedService(
		regionRepo, slotRepo, queueRepo, resCache, paymentSvc,
		cfg.Featured.ReservationHold, cfg.Featured.SlotDuration,
	)
	reminderSvc := service.NewReminderService(reminderRepo, notificationSvc, cfg.Featured.ReminderWindows)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db, redisClient),
		Vendor:   handler.NewVendorHandler(vendorSvc),
		Product:  handler.NewProductHandler(productSvc),
		Tier:     handler.NewTierHandler(tierSvc),
		Featured: handler.NewFeaturedHandler(featuredSvc, slotRepo, regionRepo),
		Region:   handler.NewRegionHandler(regionRepo),
		Checkout: handler.NewCheckoutHandler(vendorRepo, productRepo, paymentSvc),
		Webhook:  handler.NewWebhookHandler(featuredSvc, cfg.Stripe.WebhookSecret),
		Auth:     handler.NewAuthHandler(adminAuthSvc),
	}

	// 8. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewReminderWorker(reminderSvc, cfg.Worker.ReminderInterval).Start(ctx)
	go worker.NewSlotExpiryWorker(
		slotRepo, queueRepo, regionRepo, vendorRepo, userRepo, notificationSvc,
		cfg.Worker.SlotExpiryInterval,
	).Start(ctx)
	go worker.NewReservationCleanupWorker(slotRepo, cfg.Worker.ReservationCleanupInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Vendor   *handler.VendorHandler
	Product  *handler.ProductHandler
	Tier     *handler.TierHandler
	Featured *handler.FeaturedHandler
	Region   *handler.RegionHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Auth     *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware, jwtMiddleware *middleware.JWTMiddleware) {
	// Stripe webhook (signature-verified, no API key)
	router.POST("/webhook/stripe", handlers.Webhook.HandleStripeWebhook)

	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public routes
	router.POST("/v1/vendors", handlers.Vendor.Onboard)
	router.GET("/v1/regions", handlers.Region.GetRegions)
	router.POST("/v1/checkout/:vendorSlug/:productId", handlers.Checkout.CreateProductCheckout)

	// Vendor routes (protected with vendor API key)
	v1 := router.Group("/v1")
	v1.Use(authMiddleware.Handle())
	{
		// Products
		v1.GET("/products", handlers.Product.GetProducts)
		v1.POST("/products", handlers.Product.CreateProduct)
		v1.GET("/products/:id", handlers.Product.GetProduct)
		v1.PUT("/products/:id", handlers.Product.UpdateProduct)
		v1.DELETE("/products/:id", handlers.Product.DeleteProduct)
		v1.POST("/products/:id/publish", handlers.Product.PublishProduct)
		v1.POST("/products/:id/unpublish", handlers.Product.UnpublishProduct)

		// Tier
		v1.GET("/tier", handlers.Tier.GetTier)
		v1.PUT("/tier", handlers.Tier.ChangeTier)
		v1.GET("/tier/preview", handlers.Tier.PreviewDowngrade)

		// Featured slots
		v1.POST("/featured/reserve", handlers.Featured.Reserve)
		v1.GET("/featured/queue/:regionSlug", handlers.Featured.QueueStatus)
		v1.DELETE("/featured/queue/:regionSlug", handlers.Featured.LeaveQueue)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Region Management
		admin.POST("/regions", handlers.Region.CreateRegion)
		admin.PUT("/regions/:id", handlers.Region.UpdateRegion)

		// Vendor Management
		admin.GET("/vendors", handlers.Vendor.ListVendors)
		admin.PUT("/vendors/:id/status", handlers.Vendor.SetVendorStatus)

		// Featured slots
		admin.GET("/featured/slots", handlers.Featured.ListSlots)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
