// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout session endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	cartService     *cart.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cartService *cart.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
	}
}

// CreateSession handles POST /checkout
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req checkout.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	identity := middleware.IdentityFromContext(c)

	// The session is correlated with the resolved cart, never a client-chosen one
	view, err := h.cartService.Get(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.checkoutService.CreateSession(c.Request.Context(), view.ID, identity.OwnerID, &req, c.GetHeader("Origin"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Checkout session created successfully", result)
}
