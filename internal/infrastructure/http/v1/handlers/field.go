package handlers

import (
	"github.com/gin-gonic/gin"

	"customfields/internal/domain/field"
	"customfields/internal/infrastructure/http/v1/dto"
)

// FieldHandler serves field definitions.
type FieldHandler struct {
	*BaseHandler
	service *field.Service
}

// NewFieldHandler creates a field handler.
func NewFieldHandler(base *BaseHandler, service *field.Service) *FieldHandler {
	return &FieldHandler{BaseHandler: base, service: service}
}

// List handles GET /entities/:entityId/fields.
// Inactive definitions are included with ?includeInactive=true.
func (h *FieldHandler) List(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}
	defs, err := h.service.List(c.Request.Context(), entityID, h.ParseBoolQuery(c, "includeInactive", false))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDefinitions(defs))
}

// Create handles POST /entities/:entityId/fields.
func (h *FieldHandler) Create(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}
	var req field.WriteView
	if !h.BindJSON(c, &req) {
		return
	}
	def, err := h.service.Create(c.Request.Context(), entityID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, field.ToReadView(def))
}

// Reorder handles PUT /entities/:entityId/fields/order.
func (h *FieldHandler) Reorder(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.Reorder(c.Request.Context(), entityID, req.Orders()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Get handles GET /fields/:id and returns the flat read shape.
func (h *FieldHandler) Get(c *gin.Context) {
	fieldID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	def, err := h.service.Get(c.Request.Context(), fieldID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, field.ToReadView(def))
}

// GetForEdit handles GET /fields/:id/edit and returns the {value, locked} shape.
func (h *FieldHandler) GetForEdit(c *gin.Context) {
	fieldID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.GetForEdit(c.Request.Context(), fieldID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// Update handles PUT /fields/:id.
func (h *FieldHandler) Update(c *gin.Context) {
	fieldID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req field.WriteView
	if !h.BindJSON(c, &req) {
		return
	}
	def, err := h.service.Update(c.Request.Context(), fieldID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, field.ToReadView(def))
}

// Activate handles POST /fields/:id/activate.
func (h *FieldHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.service.Activate)
}

// Deactivate handles POST /fields/:id/deactivate.
func (h *FieldHandler) Deactivate(c *gin.Context) {
	h.lifecycle(c, h.service.Deactivate)
}

// Delete handles DELETE /fields/:id. The definition is soft-deleted.
func (h *FieldHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.service.Delete)
}
