package middleware

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
	"github.com/simp-lee/pageshell/internal/pkg/metrics"
	"github.com/simp-lee/pageshell/internal/pkg/ratelimit"
)

// RateLimit rejects clients that exceed limiter's budget with 429 and a
// Retry-After header. Clients are keyed by gin's ClientIP, which honours the
// engine's trusted proxy settings. Paths in exempt bypass the limiter.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Collector, logger *slog.Logger, exempt ...string) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ip := c.ClientIP()
		ok, retryAfter := limiter.Allow(ip)
		if ok {
			c.Next()
			return
		}

		m.IncRateLimited()
		logger.DebugContext(c.Request.Context(), "rate limited",
			slog.String("client_ip", ip),
			slog.Int("retry_after", retryAfter),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		AbortWithAppError(c, domain.ErrRateLimited)
	}
}
