// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/apperror"
	"docflow/pkg/logger"
)

// Recovery turns a panic into a 500 response. It must run inside
// ErrorHandler so the recorded error is rendered.
// The stack is logged and never sent to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"panic", rec,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)
			_ = c.Error(
				apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
					WithDetail("request_id", c.GetString("request_id")),
			)
			c.Abort()
		}()
		c.Next()
	}
}
