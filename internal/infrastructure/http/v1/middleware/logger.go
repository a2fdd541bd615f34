package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"customfields/internal/core/apperror"
	"customfields/pkg/logger"
)

// routeParams are the path parameters worth a log field, keyed by the
// name they are logged under.
var routeParams = map[string]string{
	"entityId": "entity_id",
	"ownerId":  "owner_id",
	"fieldId":  "field_id",
	"id":       "target_id",
}

// requestFields describes the matched route and the ids it addresses.
func requestFields(c *gin.Context) []any {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	fields := []any{"method", c.Request.Method, "route", route}
	for _, p := range c.Params {
		if name, ok := routeParams[p.Key]; ok {
			fields = append(fields, name, p.Value)
		}
	}
	return fields
}

// Logger attaches log to the request context and writes one entry per
// request. Health checks log at debug, server errors at warn.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := append(requestFields(c),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if last := c.Errors.Last(); last != nil {
			code := apperror.CodeInternal
			if appErr, ok := apperror.AsAppError(last.Err); ok {
				code = appErr.Code
			}
			fields = append(fields, "error_code", code)
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Warnw("http request failed", fields...)
		case strings.HasPrefix(c.FullPath(), "/health/"):
			l.Debugw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
