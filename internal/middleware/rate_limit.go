package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/cache"
)

// IssueRateLimitWindow is the window issue creation is counted over
const IssueRateLimitWindow = 24 * time.Hour

// RateLimit caps requests per authenticated user to limit per window. With no
// store or a non-positive limit it is a pass-through. If the store fails the
// request is let through and the failure logged.
func RateLimit(store cache.CounterStore, name string, limit int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	if store == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
			return
		}

		key := fmt.Sprintf("%s:%d", name, userID)
		count, ttl, err := store.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.Error("Rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			retryAfter := int64(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Rate limit exceeded",
				"code":    "rate_limited",
				"details": gin.H{
					"limit":       limit,
					"retry_after": retryAfter,
				},
			})
			return
		}

		c.Next()
	}
}
