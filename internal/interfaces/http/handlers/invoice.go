// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// InvoiceRenderer turns an order into a PDF document
type InvoiceRenderer interface {
	GenerateInvoice(ctx context.Context, o *order.Order) ([]byte, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, renderer InvoiceRenderer) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		renderer:     renderer,
	}
}

// GenerateInvoice handles GET /orders/:customer_facing_id/invoice.
// Owners fetch their own orders; guests must present the order's session id.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	o, err := h.orderService.GetByCustomerFacingID(c.Request.Context(), c.Param("customer_facing_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !canAccess(c, o) {
		// Same answer as a missing order so ids cannot be probed
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
			"code":  "NOT_FOUND",
		})
		return
	}

	pdf, err := h.renderer.GenerateInvoice(c.Request.Context(), o)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
			"code":  "INTERNAL",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.CustomerFacingID))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func canAccess(c *gin.Context, o *order.Order) bool {
	if ownerID, ok := middleware.GetOwnerIDFromContext(c); ok && o.OwnerID != nil && *o.OwnerID == ownerID {
		return true
	}
	sessionID := c.Query("session_id")
	return sessionID != "" && sessionID == o.GatewaySessionID
}
