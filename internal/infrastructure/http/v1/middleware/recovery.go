// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"customfields/internal/core/apperror"
	"customfields/pkg/logger"
)

// Recovery turns a panic in a handler into INTERNAL_ERROR for the route
// that raised it. The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			fields := append(requestFields(c),
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			logger.Error(c.Request.Context(), "handler panicked", fields...)

			// ErrorHandler is unwound by the panic, so the response is written here.
			appErr := apperror.NewInternal(fmt.Errorf("panic in %s: %v", c.FullPath(), recovered)).
				WithDetail("request_id", c.GetString("request_id"))
			_ = c.Error(appErr)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
		}()
		c.Next()
	}
}
