package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header carrying the request id
	RequestIDHeader = "X-Request-ID"
	// ContextKeyRequestID is the gin context key holding the request id
	ContextKeyRequestID = "request_id"
)

// RequestID assigns each request an id, honoring one supplied by the caller
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID extracts the request id from gin context
func GetRequestID(c *gin.Context) string {
	if value, exists := c.Get(ContextKeyRequestID); exists {
		if requestID, ok := value.(string); ok {
			return requestID
		}
	}
	return ""
}
