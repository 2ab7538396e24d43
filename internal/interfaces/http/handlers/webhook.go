// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/webhook"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// WebhookHandler receives payment gateway webhooks
type WebhookHandler struct {
	processor    *webhook.Processor
	maxBodyBytes int64
	logger       *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(processor *webhook.Processor, maxBodyBytes int64, logger *logrus.Logger) *WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 65536
	}
	return &WebhookHandler{
		processor:    processor,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// HandleStripe handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	// The signature covers the exact bytes, so the body is read raw
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	outcome, err := h.processor.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))

	switch apperror.KindOf(err) {
	case "":
		body := gin.H{"received": true}
		if outcome.NotificationFailed {
			body["notification_failed"] = true
		}
		if outcome.Result != nil && outcome.Result.Order != nil {
			body["order_id"] = outcome.Result.Order.CustomerFacingID
		}
		c.JSON(http.StatusOK, body)
	case apperror.KindUnhandledEventType:
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
	case apperror.KindDuplicateFulfillment:
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
	default:
		respondError(c, err)
	}
}
