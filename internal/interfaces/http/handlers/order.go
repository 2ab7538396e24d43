// internal/interfaces/http/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetBySession handles GET /orders/session/:session_id
func (h *OrderHandler) GetBySession(c *gin.Context) {
	o, err := h.orderService.GetBySessionID(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Order retrieved successfully", o)
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerIDFromContext(c)

	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.orderService.ListByOwner(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Orders retrieved successfully", resp)
}
