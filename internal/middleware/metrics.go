package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/pkg/metrics"
)

// Metrics records request count and latency per matched route.
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, RouteLabel(c), c.Writer.Status(), time.Since(start))
	}
}
