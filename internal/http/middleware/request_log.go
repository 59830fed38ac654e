package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// quietRoutes are probed by orchestrators and scrapers; successful hits are
// logged at debug so they do not drown the access log.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/readyz":      true,
	"/metrics":     true,
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if req, ok := ctxutil.RequestFrom(c.Request.Context()); ok {
			fields = append(fields, "request_id", req.ID)
			if req.TraceID != "" {
				fields = append(fields, "trace_id", req.TraceID)
			}
		}
		if userID := ctxutil.GetUserID(c.Request.Context()); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
