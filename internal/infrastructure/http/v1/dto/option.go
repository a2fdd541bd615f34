package dto

import (
	"customfields/internal/core/id"
	"customfields/internal/domain/option"
)

// OptionRequest creates or renames an option.
type OptionRequest struct {
	Text string `json:"text" binding:"required"`
}

// OptionListResponse lists the options of one field.
type OptionListResponse struct {
	Items      []*option.Option `json:"items"`
	TotalCount int              `json:"totalCount"`
}

// EntityOptionsResponse groups the active options of every field of an
// owning entity by field id.
type EntityOptionsResponse struct {
	Fields map[string][]*option.Option `json:"fields"`
}

// FromOptionMap keys the bulk listing by string ids for JSON.
func FromOptionMap(m map[id.ID][]*option.Option) EntityOptionsResponse {
	out := make(map[string][]*option.Option, len(m))
	for fieldID, opts := range m {
		out[fieldID.String()] = opts
	}
	return EntityOptionsResponse{Fields: out}
}
