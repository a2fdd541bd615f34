package v1

import (
	"github.com/gin-gonic/gin"
)

// LifecycleRouteHandler serves the status transitions shared by fields and
// options.
type LifecycleRouteHandler interface {
	Activate(c *gin.Context)
	Deactivate(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterLifecycleRoutes registers the activate/deactivate/delete routes
// on a group whose path ends in /:id.
func RegisterLifecycleRoutes(group *gin.RouterGroup, handler LifecycleRouteHandler) {
	group.POST("/activate", handler.Activate)
	group.POST("/deactivate", handler.Deactivate)
	group.DELETE("", handler.Delete)
}
