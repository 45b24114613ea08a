package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/ratelimit"
)

// RateLimit returns a middleware that rejects clients exceeding their request
// budget with 429.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded, slow down",
			})
			return
		}
		c.Next()
	}
}
