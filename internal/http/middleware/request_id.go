package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"pken.app/survey-gateway/common/id"
	"pken.app/survey-gateway/common/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags the request context and response with an id. A sane
// incoming X-Request-Id is kept so LIFF client logs line up with ours.
// When traceHeader is set and the request is traced, the trace id is echoed too.
func RequestID(traceHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = id.NewRequestID()
		}

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: &requestID})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		if traceHeader != "" {
			if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
				c.Header(traceHeader, sc.TraceID().String())
			}
		}

		c.Next()
	}
}
