package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the caller-supplied correlation ID.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key the correlation ID is stored under.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID attaches a correlation ID to every request. The ID is taken
// from the inbound header when present, otherwise generated, and is echoed
// back in the response. Review endpoints stamp it onto ledger entries and
// audit records so a payout can be traced back to the request that caused it.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the correlation ID for the current request, or an
// empty string when the middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	v, ok := c.Get(CorrelationIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
