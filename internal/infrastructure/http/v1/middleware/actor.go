package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "customfields/internal/core/context"
)

// HeaderActorID carries the id of the caller recorded on written values.
// Authentication happens upstream of this service.
const HeaderActorID = "X-Actor-ID"

// Actor copies the caller id from the request header into the request
// context for the domain layer.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorID := strings.TrimSpace(c.GetHeader(HeaderActorID)); actorID != "" {
			ctx := appctx.WithActor(c.Request.Context(), &appctx.Actor{ActorID: actorID, Source: "http"})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
