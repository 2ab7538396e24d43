// cmd/notifycheck/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

// Sends a sample order confirmation through the configured provider
func main() {
	to := flag.String("to", "", "recipient address")
	flag.Parse()
	if *to == "" {
		log.Fatal("-to is required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	emailService := email.NewEmailService(cfg.External.Email, logger.New(cfg.Logging))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sample := email.OrderConfirmationData{
		StoreName:        cfg.Checkout.StoreName,
		SupportEmail:     cfg.Checkout.SupportEmail,
		CustomerEmail:    *to,
		CustomerName:     "Test Customer",
		CustomerFacingID: cfg.Checkout.OrderIDPrefix + "TEST01",
		Items: []email.OrderLine{
			{Name: "Sample Product", Quantity: 2, UnitPrice: 1250, LineTotal: 2500},
		},
		Subtotal:    2500,
		ShippingFee: 500,
		Total:       3000,
	}

	if err := emailService.SendOrderConfirmation(ctx, sample); err != nil {
		log.Fatalf("Send failed via %s: %v", cfg.External.Email.Provider, err)
	}

	log.Println("✅ Email sent successfully!")
}
