package middleware

import (
	"strconv"
	"time"

	"courier-escrow/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request latency per route template, so ids in paths do not
// explode the label set.
func Metrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
