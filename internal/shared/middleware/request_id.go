package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the caller-supplied correlation id.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key the id is stored under.
	RequestIDKey = "request_id"
)

// RequestID tags every request with a correlation id, honoring one the
// client already sent and echoing it back in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request's correlation id, or empty when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}
