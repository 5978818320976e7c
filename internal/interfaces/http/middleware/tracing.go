// Package middleware provides HTTP middleware for the storefront server.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// Options are passed through to otelgin, e.g. a specific TracerProvider.
	Options []otelgin.Option
}

// Tracing starts a server span per request through otelgin.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, cfg.Options...)
}

// SpanAttributes tags the request span with the request and session ids and
// marks it as failed on 5xx answers. It must run after Tracing, RequestID and Session.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		span.SetAttributes(attribute.String("request_id", GetRequestID(c)))
		if sessionID := GetSessionID(c); sessionID != "" {
			span.SetAttributes(attribute.String("session_id", sessionID))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
