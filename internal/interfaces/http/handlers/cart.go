// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.Get(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, "Cart retrieved successfully", view)
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), middleware.IdentityFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, "Item added to cart successfully", view)
}

// UpdateCartItem handles PUT /cart/items/:product_id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.UpdateItem(c.Request.Context(), middleware.IdentityFromContext(c), uint(productID), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, "Cart item updated successfully", view)
}

// UpdateCartItems handles PUT /cart/items
func (h *CartHandler) UpdateCartItems(c *gin.Context) {
	var req cart.BatchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.UpdateItems(c.Request.Context(), middleware.IdentityFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, "Cart updated successfully", view)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	view, err := h.cartService.Clear(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, "Cart cleared successfully", view)
}

// respond echoes the cart id so guests can keep using it
func (h *CartHandler) respond(c *gin.Context, message string, view *cart.CartView) {
	c.Header("X-Cart-ID", view.ID)
	respondOK(c, message, view)
}
