// internal/interfaces/http/middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the middleware chain
const (
	RequestIDKey = "request_id"
	CartIDKey    = "cart_id"
	OwnerIDKey   = "owner_id"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when it is sane
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
