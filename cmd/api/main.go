// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/webhook"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/infrastructure/messaging/kafka"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	appLogger.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), appLogger)

	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("Index creation failed")
	}

	// Seed catalog data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			appLogger.WithError(err).Warn("Data seeding failed")
		}
		if err := migration.GetTableInfo(); err != nil {
			appLogger.WithError(err).Warn("Failed to read table info")
		}
	}

	// Order events go to Kafka when brokers are configured
	var publisher order.Publisher = order.NoopPublisher{}
	if len(cfg.External.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.External.Kafka, appLogger)
		defer producer.Close()
		publisher = producer
	} else {
		appLogger.Info("No Kafka brokers configured, order events are disabled")
	}

	// Services
	stripeService := payment.NewStripeService(cfg.External.Stripe, appLogger)
	productService := product.NewService(db.GetDB())

	cartStore := cart.NewGormStore(db.GetDB())
	cartService := cart.NewService(cartStore, cart.NewResolver(cartStore, appLogger), productService, appLogger)

	checkoutService := checkout.NewService(stripeService, productService, cfg.Checkout.FrontendURL, appLogger)

	emailService := email.NewEmailService(cfg.External.Email, appLogger)
	orderService := order.NewService(db.GetDB(), emailService, publisher, cfg.Checkout, appLogger)

	ledger := webhook.NewRedisLedger(redisClient.GetClient(), cfg.Webhook.ProcessedEventTTL)
	processor := webhook.NewProcessor(stripeService, orderService, ledger, appLogger)

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   appLogger,
		JWT:      auth.NewJWTManager(cfg.JWT),
		Products: productService,
		Carts:    cartService,
		Checkout: checkoutService,
		Orders:   orderService,
		Webhooks: processor,
		Invoices: pdf.NewService(cfg.Checkout),
	}

	server := http.NewServer(cfg, deps, redisClient.GetClient(), map[string]http.HealthChecker{
		"database": db,
		"redis":    redisClient,
	}, appLogger)

	appLogger.Info("✅ All systems operational!")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	appLogger.Info("✅ Server shutdown completed")
}
