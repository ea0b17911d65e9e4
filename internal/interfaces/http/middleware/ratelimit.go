package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embedgate/embedgate/internal/infrastructure/ratelimit"
	"github.com/embedgate/embedgate/internal/shared/logger"
	"github.com/embedgate/embedgate/internal/shared/utils"
)

// VerifyRateLimit throttles the public verification endpoint per client
// IP. A limiter failure fails open: the widget must not go dark because
// redis is down.
func VerifyRateLimit(limiter ratelimit.RateLimiter, limitPerMinute int, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limitPerMinute <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limitPerMinute)
		if err != nil {
			log.Warnw("rate limiter unavailable, allowing request",
				"client_ip", c.ClientIP(),
				"error", err,
			)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many verification requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
