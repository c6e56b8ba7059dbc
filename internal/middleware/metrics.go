package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grundschule/stundenplan-api/internal/service"
)

// Metrics observes each request under its route template, so
// /teachers/42 and /teachers/7 share one label set. Requests matching no
// route collapse into a single bucket to keep label cardinality bounded,
// and the scrape endpoint does not measure itself.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
