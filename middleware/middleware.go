// Package middleware provides the gin middleware chain: trace ids,
// request logging, and session authentication.
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartbuspass/backend/ctxutil"
	"github.com/smartbuspass/backend/logging/logger"
)

// Trace assigns every request a trace id and logs its completion.
func Trace(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, traceID := ctxutil.EnsureTraceID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		c.Next()

		log.Info(ctx, "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
		)
	}
}

// extractToken pulls the bearer token from the Authorization header,
// accepting the bare token as well for older clients.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(header)
}
