package ratelimit

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Humans-Not-Required/agent-chat/internal/pkg/response"
)

// Middleware returns a gin.HandlerFunc that rate-limits requests keyed by
// "<action>:<client IP>", aborting with 429 when the limit is exceeded.
func (l *Limiter) Middleware(action string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := action + ":" + c.ClientIP()
		if err := l.Check(key, max, window); err != nil {
			response.Err(c, err)
			return
		}
		c.Next()
	}
}
