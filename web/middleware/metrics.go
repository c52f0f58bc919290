package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/metrics"
)

// Metrics records count and latency per route and logs each request at
// debug level.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordRequest(c.Request.Method, route, status, elapsed)
		logger.Debugf("%s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, GetRequestID(c))
	}
}
