package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"customfields/internal/core/id"
)

// lifecycle runs a status transition on the :id path parameter.
func (h *BaseHandler) lifecycle(c *gin.Context, fn func(ctx context.Context, targetID id.ID) error) {
	targetID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), targetID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
