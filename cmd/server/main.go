package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"acp_checkout_echo/internal/config"
	"acp_checkout_echo/internal/handlers"
	"acp_checkout_echo/internal/middleware"
	"acp_checkout_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()

	// Initialize Database
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Schema contract: migrate and seed once at startup, never per request
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	if err := services.SeedProducts(db, cfg.ProductFeedPath); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	// Idempotency store: Redis when configured, in-process fallback for dev
	var idempotency services.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		idempotency = services.NewRedisIdempotencyStore(redisClient)
	} else {
		log.Println("Warning: REDIS_URL not set, idempotency records are in-memory only")
		idempotency = services.NewMemoryIdempotencyStore()
	}

	// Payment gateway
	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set, gateway calls will fail")
	}
	gateway := services.NewStripeService(cfg.StripeSecretKey, cfg.SharedTokenMethods, cfg.FallbackPaymentMethod)

	// Services
	productService := services.NewProductService(db)
	checkoutService := services.NewCheckoutService(db, gateway, idempotency)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = middleware.JSONErrorHandler

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(db, cfg.StripeWebhookSecret)

	// Public routes
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/products", productHandler.ListProducts)
	e.GET("/products/:id", productHandler.GetProduct)
	e.POST("/webhooks/gateway", webhookHandler.HandleGatewayEvent)

	// Checkout routes, behind the pre-shared API key
	checkout := e.Group("/checkout", middleware.RequireAPIKey(cfg.APIKey))
	checkout.POST("/sessions", checkoutHandler.CreateSession)
	checkout.POST("/sessions/:id", checkoutHandler.UpdateSession)
	checkout.POST("/sessions/:id/complete", checkoutHandler.CompleteSession)

	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
