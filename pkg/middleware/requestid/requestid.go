// Package requestid tags every request with an ID so a failed batch
// generation can be traced from the access log into the worker logs.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerKey  = "X-Request-ID"
	contextKey = "request_id"
)

// Middleware reuses an incoming X-Request-ID header when the caller
// supplies one, otherwise mints a fresh ID. The ID is echoed on the
// response so clients can quote it in support requests.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerKey)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(headerKey, reqID)
		c.Next()
	}
}

// Value returns the current request's ID, or "" outside the middleware.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, isStr := v.(string); isStr {
			return id
		}
	}
	return ""
}
