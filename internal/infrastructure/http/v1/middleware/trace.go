package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appctx "docflow/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracer = otel.Tracer("docflow/http")

// Trace middleware adds request tracing context and a server span.
// Incoming X-Request-ID and X-Trace-ID headers are kept when present.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := appctx.NewTraceContext()
		if requestID := c.GetHeader(HeaderRequestID); requestID != "" {
			tc.RequestID = requestID
		}
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			tc.TraceID = traceID
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("request.id", tc.RequestID)))
		defer span.End()

		ctx = appctx.WithTrace(ctx, tc)
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", tc.TraceID)
		c.Set("request_id", tc.RequestID)
		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
