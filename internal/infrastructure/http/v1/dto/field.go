package dto

import (
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
)

// FieldListResponse lists field definitions in display order.
type FieldListResponse struct {
	Items      []field.ReadView `json:"items"`
	TotalCount int              `json:"totalCount"`
}

// FromDefinitions projects definitions onto the read shape.
func FromDefinitions(defs []*field.Definition) FieldListResponse {
	items := make([]field.ReadView, 0, len(defs))
	for _, d := range defs {
		items = append(items, field.ToReadView(d))
	}
	return FieldListResponse{Items: items, TotalCount: len(items)}
}

// ReorderItem assigns one display order.
type ReorderItem struct {
	FieldID id.ID `json:"field_id" binding:"required"`
	Order   int   `json:"field_order"`
}

// ReorderRequest is the body of PUT /entities/:entityId/fields/order.
type ReorderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1,dive"`
}

// Orders converts the request into the service argument. A repeated field
// id keeps its last order.
func (r ReorderRequest) Orders() map[id.ID]int {
	out := make(map[id.ID]int, len(r.Items))
	for _, item := range r.Items {
		out[item.FieldID] = item.Order
	}
	return out
}
