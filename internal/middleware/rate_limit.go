package middleware

import (
	"net/http"
	"strconv"
	"time"

	"vaops/internal/cache"
	"vaops/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit allows limit requests per window for each user (or client IP before login).
// The counter lives in the cache so every API replica shares it; a cache failure lets the request through.
func RateLimit(store cache.Store, limit int64, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := UserID(c); ok {
			key = "user:" + id.String()
		}

		count, err := store.IncrWithExpire(c.Request.Context(), "ratelimit", key, window)
		if err != nil {
			log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count > limit {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Error(http.StatusTooManyRequests, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}
