package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// --- Initialize RabbitMQ Client ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}

	// --- Payment providers ---
	providerHTTP := &http.Client{Timeout: cfg.ProviderTimeout}
	wallet := payments.NewPayPalClient(cfg.Providers.PayPal, providerHTTP)
	card := payments.NewStripeClient(cfg.Providers.Stripe, providerHTTP)

	app := newApp(cfg, db, mqClient, wallet, card)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app. events
// may be nil.
func newApp(cfg *config.Config, db *database.DB, events services.EventPublisher, wallet payments.WalletProvider, card payments.CardProcessor) *fiber.App {
	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db.Gorm)
	productRepo := repositories.NewGORMProductRepository(db.Gorm)
	cartRepo := repositories.NewGORMCartRepository(db.Gorm)
	orderRepo := repositories.NewGORMOrderRepository(db.Gorm)
	reportRepo := repositories.NewSQLXReportRepository(db.SQLX)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	resolver := services.NewIdentityResolver(authService)
	merger := services.NewCartMergeCoordinator(cartRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	userService := services.NewUserService(userRepo)
	orderService := services.NewOrderService(orderRepo, cartRepo, userRepo, events)
	paymentService := services.NewPaymentService(orderRepo, orderService, wallet, card, cfg.Currency, cfg.ProviderTimeout)
	reportService := services.NewReportService(reportRepo)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	// Registered ahead of the guard: probes and provider callbacks get no session cookie.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		status, code := "healthy", fiber.StatusOK
		if err := db.SQLX.PingContext(ctx); err != nil {
			log.Printf("Health check: database unreachable: %v", err)
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	apiV1 := app.Group("/api/v1")
	handlers.NewWebhookHandler(paymentService, cfg.Providers.Stripe.WebhookSecret).RegisterRoutes(apiV1)

	app.Use(middleware.Guard(middleware.NewRouteGuard(cfg.SignInPath), resolver, cfg.SecureCookies))

	// --- API Routes ---
	handlers.NewAuthHandler(authService, merger, cfg.TokenTTL, cfg.SecureCookies).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(userService, orderService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, paymentService).RegisterRoutes(apiV1)
	handlers.NewAdminHandler(orderService, paymentService, reportService).RegisterRoutes(apiV1)

	return app
}
