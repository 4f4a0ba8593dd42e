// Package response renders chatcore.Error values onto the wire in the
// flat shape the HTTP surface uses: {"error": "<reason>"}, with the
// rate-limit fields and headers added when the failure is KindRateLimited.
package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// JSON writes data as-is with the given status code.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Err translates err to its HTTP status and body shape and writes it.
// Any error that isn't a *chatcore.Error is treated as Internal.
func Err(c *gin.Context, err error) {
	ce, ok := chatcore.As(err)
	if !ok {
		ce = chatcore.Internal(err)
	}

	switch ce.Kind {
	case chatcore.KindInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.Message})
	case chatcore.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": ce.Message})
	case chatcore.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": ce.Message})
	case chatcore.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": ce.Message})
	case chatcore.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": ce.Message})
	case chatcore.KindRateLimited:
		c.Header("Retry-After", fmt.Sprintf("%d", ce.RetryAfterSecs))
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", ce.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", ce.Remaining))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":            ce.Message,
			"retry_after_secs": ce.RetryAfterSecs,
			"limit":            ce.Limit,
			"remaining":        ce.Remaining,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	c.Abort()
}
