package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/util/metrics"
	"github.com/mhsanaei/userhub/web/cache"
	"github.com/mhsanaei/userhub/web/entity"
)

// RateLimitConfig configures a fixed-window limiter.
type RateLimitConfig struct {
	Limit   int
	Window  time.Duration
	KeyFunc func(c *gin.Context) string
	Now     func() time.Time
}

// PerSecond allows n requests per client and route each second.
func PerSecond(n int) RateLimitConfig {
	return RateLimitConfig{
		Limit:  n,
		Window: time.Second,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Now: time.Now,
	}
}

// RateLimitError is recorded when a client goes over its limit.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return common.ErrRateLimited
}

func (e *RateLimitError) Msg() entity.RateLimitMsg {
	return entity.RateLimitMsg{
		Error:      true,
		Message:    "Rate Limit Exceeded",
		Detail:     fmt.Sprintf("Too many request. Try again in %d seconds", e.RetryAfter),
		RetryAfter: e.RetryAfter,
	}
}

// RateLimit counts requests per client, route and window in redis. It lets
// requests through when redis is unavailable.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		now := config.Now()
		window := now.UnixNano() / int64(config.Window)
		windowEnd := time.Unix(0, (window+1)*int64(config.Window))
		key := "ratelimit:" + route + ":" + config.KeyFunc(c) + ":" + strconv.FormatInt(window, 10)

		count, err := cache.Incr(c.Request.Context(), key, config.Window)
		if err != nil {
			logger.Warning("rate limit increment failed:", err)
			c.Next()
			return
		}

		remaining := max(config.Limit-int(count), 0)
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(windowEnd.Unix(), 10))

		if int(count) > config.Limit {
			retryAfter := max(int(math.Ceil(windowEnd.Sub(now).Seconds())), 1)
			metrics.RecordRateLimitHit(route)
			logger.Debugf("rate limit exceeded for %s on %s (count: %d)", config.KeyFunc(c), route, count)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			_ = c.Error(&RateLimitError{RetryAfter: retryAfter})
			c.Abort()
			return
		}

		c.Next()
	}
}
