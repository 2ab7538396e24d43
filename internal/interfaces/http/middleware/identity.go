// internal/interfaces/http/middleware/identity.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

const (
	cartIDHeader    = "X-Cart-ID"
	tokenCookieName = "access_token"
)

// Identity reads the optional identity token and guest cart header.
// Requests without a valid token continue as guests.
func Identity(jwtManager *auth.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(tokenCookieName)
		}

		if token != "" {
			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"request_id": c.GetString(RequestIDKey),
					"error":      err.Error(),
				}).Debug("Ignoring invalid identity token")
			} else {
				if owner := claims.OwnerID(); owner != nil {
					c.Set(OwnerIDKey, *owner)
				}
				if claims.CartID != "" {
					c.Set(CartIDKey, claims.CartID)
				}
			}
		}

		if _, ok := c.Get(CartIDKey); !ok {
			if id := c.GetHeader(cartIDHeader); id != "" {
				c.Set(CartIDKey, id)
			}
		}

		c.Next()
	}
}

// RequireOwner rejects requests without an authenticated user
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetOwnerIDFromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHENTICATED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetOwnerIDFromContext extracts the authenticated user id from gin context
func GetOwnerIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(OwnerIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// IdentityFromContext builds the cart identity for the request
func IdentityFromContext(c *gin.Context) cart.Identity {
	var id cart.Identity
	if owner, ok := GetOwnerIDFromContext(c); ok {
		id.OwnerID = &owner
	}
	id.CartID = c.GetString(CartIDKey)
	return id
}
