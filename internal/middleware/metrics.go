package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-io/registrar-api/internal/service"
)

// Metrics times every request into the Prometheus collectors. The
// route template is preferred over the raw path so /enrollments/:id
// stays one label value instead of one per identifier.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
