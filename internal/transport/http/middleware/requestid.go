package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID doubles as the header name and the gin context key.
const KeyRequestID = "X-Request-ID"

// RequestID trusts an inbound id when the caller supplies one (gateway or
// retrying client), otherwise mints a fresh one, and echoes it on the
// response so storefront requests can be correlated across the two APIs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(KeyRequestID, rid)
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Next()
	}
}
