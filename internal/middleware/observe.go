package middleware

import (
	"net/http"
	"time"

	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequestObserver logs every request and records it in m.
// Unmatched routes are labelled "unmatched".
func RequestObserver(log logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveRequest(route, c.Request.Method, status, elapsed)

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000),
		}
		if status >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "request failed", fields...)
			return
		}
		log.Debug(c.Request.Context(), "request served", fields...)
	}
}
