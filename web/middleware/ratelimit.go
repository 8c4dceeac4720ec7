package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/metrics"
	"github.com/dboika/folio/web/locale"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "folio:ratelimit:"

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig limits each client IP to perMinute requests per route.
func DefaultRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: perMinute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware counts requests per key and route in fixed one-minute
// windows stored in Redis. When Redis fails the request is let through.
func RateLimitMiddleware(client *redis.Client, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := config.KeyFunc(c)
		rateLimitKey := rateLimitPrefix + key + ":" + route
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, rateLimitKey).Result()
		if err != nil {
			logger.Warning("Rate limit increment failed:", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, rateLimitKey, time.Minute).Err(); err != nil {
				logger.Warning("Rate limit expire failed:", err)
			}
		}

		remaining := config.RequestsPerMinute - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > config.RequestsPerMinute {
			metrics.RateLimited.WithLabelValues(route).Inc()
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, route, count)
			if ttl, err := client.TTL(ctx, rateLimitKey).Result(); err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     locale.I18n("pages.login.tooManyAttempts"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
