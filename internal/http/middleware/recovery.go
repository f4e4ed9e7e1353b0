package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pken.app/survey-gateway/common/logger"
)

// Recovery turns a handler panic into a 500. The body carries the request
// id so a LIFF user's report can be matched to the logged stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()

			span := trace.SpanFromContext(ctx)
			span.RecordError(fmt.Errorf("panic: %v", rec))
			span.SetStatus(codes.Error, "panic")

			slog.ErrorContext(ctx, "handler panicked",
				"panic", rec,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			body := gin.H{"error": "internal server error"}
			if rid := logger.GetLogFields(ctx).RequestID; rid != nil {
				body["request_id"] = *rid
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
