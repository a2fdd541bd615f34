package handlers

import (
	"github.com/gin-gonic/gin"

	"customfields/internal/domain/option"
	"customfields/internal/infrastructure/http/v1/dto"
)

// OptionHandler serves option sets.
type OptionHandler struct {
	*BaseHandler
	service *option.Service
}

// NewOptionHandler creates an option handler.
func NewOptionHandler(base *BaseHandler, service *option.Service) *OptionHandler {
	return &OptionHandler{BaseHandler: base, service: service}
}

// ListByField handles GET /fields/:id/options.
func (h *OptionHandler) ListByField(c *gin.Context) {
	fieldID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	opts, err := h.service.ListByField(c.Request.Context(), fieldID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.OptionListResponse{Items: opts, TotalCount: len(opts)})
}

// ListByEntity handles GET /entities/:entityId/options.
func (h *OptionHandler) ListByEntity(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}
	m, err := h.service.ListByEntity(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOptionMap(m))
}

// Create handles POST /fields/:id/options.
func (h *OptionHandler) Create(c *gin.Context) {
	fieldID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.OptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := h.service.Create(c.Request.Context(), fieldID, req.Text)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o)
}

// Update handles PUT /options/:id.
func (h *OptionHandler) Update(c *gin.Context) {
	optionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.OptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := h.service.UpdateText(c.Request.Context(), optionID, req.Text)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Activate handles POST /options/:id/activate.
func (h *OptionHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.service.Activate)
}

// Deactivate handles POST /options/:id/deactivate.
func (h *OptionHandler) Deactivate(c *gin.Context) {
	h.lifecycle(c, h.service.Deactivate)
}

// Delete handles DELETE /options/:id.
func (h *OptionHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.service.Delete)
}
