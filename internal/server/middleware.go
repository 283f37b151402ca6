package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bloomloft/garland/internal/observability/metrics"
	"github.com/bloomloft/garland/pkg/correlation"
)

const roleContextKey = "actor_role"

// RequestLogMiddleware attaches a correlation id to the request context
// and logs one line per request with safe fields only.
func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()

		ctx := c.Request.Context()
		if requestID := strings.TrimSpace(c.GetHeader("X-Request-Id")); requestID != "" {
			ctx = correlation.Inject(ctx, requestID)
		}
		ctx, requestID := correlation.Ensure(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
	}
}

func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// AdminAuthRequired resolves the X-Api-Key header to a role and stores it
// on the context. Authorization per action happens in the handlers.
func (s *Server) AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := s.authzSvc.ResolveRole(c.GetHeader("X-Api-Key"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(roleContextKey, role)
		c.Next()
	}
}

func actorRole(c *gin.Context) string {
	return c.GetString(roleContextKey)
}
