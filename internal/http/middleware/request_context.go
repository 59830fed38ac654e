package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
)

const (
	headerRequestID = "X-Request-Id"
	headerTraceID   = "X-Trace-Id"
	maxRequestIDLen = 128
)

// RequestContext tags the request with a request id and, when otelgin has
// opened a span, its trace id. Both are echoed back as response headers.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := ctxutil.Request{ID: clientRequestID(c.GetHeader(headerRequestID))}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			req.TraceID = sc.TraceID().String()
			c.Writer.Header().Set(headerTraceID, req.TraceID)
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequest(c.Request.Context(), req))
		c.Writer.Header().Set(headerRequestID, req.ID)
		c.Next()
	}
}

// clientRequestID keeps a caller-supplied id only if it is short and made of
// [A-Za-z0-9._:-]; anything else is replaced so it cannot pollute the logs.
func clientRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return ""
		}
	}
	return raw
}
