package handlers

import (
	"github.com/gin-gonic/gin"

	"customfields/internal/core/apperror"
	"customfields/internal/domain/batch"
	"customfields/internal/domain/value"
	"customfields/internal/infrastructure/http/v1/dto"
)

// ValueHandler serves stored values and batch submissions.
type ValueHandler struct {
	*BaseHandler
	values  *value.Service
	updater *batch.Updater
}

// NewValueHandler creates a value handler.
func NewValueHandler(base *BaseHandler, values *value.Service, updater *batch.Updater) *ValueHandler {
	return &ValueHandler{BaseHandler: base, values: values, updater: updater}
}

// List handles GET /owners/:ownerId/values.
func (h *ValueHandler) List(c *gin.Context) {
	ownerID, ok := h.ParseID(c, "ownerId")
	if !ok {
		return
	}
	recs, err := h.values.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecords(ownerID, recs))
}

// Get handles GET /owners/:ownerId/values/:fieldId.
func (h *ValueHandler) Get(c *gin.Context) {
	ownerID, ok := h.ParseID(c, "ownerId")
	if !ok {
		return
	}
	fieldID, ok := h.ParseID(c, "fieldId")
	if !ok {
		return
	}
	rec, err := h.values.Get(c.Request.Context(), fieldID, ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(rec))
}

// Apply handles PUT /owners/:ownerId/values. Per-item rejections are part
// of a 200 response; only request-level problems and store failures
// produce an error status. When a store failure aborts the batch midway,
// the error carries the committed items under details.result.
func (h *ValueHandler) Apply(c *gin.Context) {
	ownerID, ok := h.ParseID(c, "ownerId")
	if !ok {
		return
	}
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.updater.Apply(c.Request.Context(), ownerID, req.Values, h.ActorID(c))
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && res != nil {
			err = appErr.WithDetail("result", dto.FromBatchResult(res))
		}
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatchResult(res))
}
