package dto

import (
	"time"

	"customfields/internal/core/id"
	"customfields/internal/domain/batch"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/validation"
	"customfields/internal/domain/value"
)

// BatchRequest is the body of PUT /owners/:ownerId/values.
type BatchRequest struct {
	Values []batch.Submission `json:"values" binding:"required,dive"`
}

// ValueResponse is one stored value in caller-facing form.
type ValueResponse struct {
	ID        id.ID          `json:"id"`
	FieldID   id.ID          `json:"field_id"`
	OwnerID   id.ID          `json:"owner_id"`
	FieldType fieldtype.Type `json:"field_type"`
	Value     any            `json:"value"`
	UpdatedBy string         `json:"updated_by,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FromRecord maps a value record.
func FromRecord(r *value.Record) ValueResponse {
	return ValueResponse{
		ID:        r.ID,
		FieldID:   r.FieldID,
		OwnerID:   r.OwnerID,
		FieldType: r.FieldType,
		Value:     r.Value(),
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
	}
}

// ValueListResponse lists the stored values of one owner.
type ValueListResponse struct {
	OwnerID    id.ID           `json:"owner_id"`
	Items      []ValueResponse `json:"items"`
	TotalCount int             `json:"totalCount"`
}

// FromRecords maps the values of ownerID.
func FromRecords(ownerID id.ID, recs []*value.Record) ValueListResponse {
	items := make([]ValueResponse, 0, len(recs))
	for _, r := range recs {
		items = append(items, FromRecord(r))
	}
	return ValueListResponse{OwnerID: ownerID, Items: items, TotalCount: len(items)}
}

// RejectionResponse flattens a rejection with its dominant kind.
type RejectionResponse struct {
	Kind       validation.Kind        `json:"kind"`
	Label      string                 `json:"label,omitempty"`
	Violations []validation.Violation `json:"violations"`
}

// BatchItemResponse reports one submission.
type BatchItemResponse struct {
	FieldID   id.ID              `json:"field_id"`
	Status    batch.Status       `json:"status"`
	Value     any                `json:"value,omitempty"`
	Rejection *RejectionResponse `json:"rejection,omitempty"`
}

// BatchSummary counts items per status.
type BatchSummary struct {
	Saved     int `json:"saved"`
	Unchanged int `json:"unchanged"`
	Cleared   int `json:"cleared"`
	Rejected  int `json:"rejected"`
}

// BatchResponse is the batch outcome.
type BatchResponse struct {
	OwnerID              id.ID               `json:"owner_id"`
	Items                []BatchItemResponse `json:"items"`
	Summary              BatchSummary        `json:"summary"`
	PendingFileDeletions []string            `json:"pending_file_deletions"`
}

// FromBatchResult maps a batch result.
func FromBatchResult(res *batch.Result) BatchResponse {
	items := make([]BatchItemResponse, 0, len(res.Items))
	for _, it := range res.Items {
		item := BatchItemResponse{FieldID: it.FieldID, Status: it.Status, Value: it.Value}
		if it.Rejection != nil {
			item.Rejection = &RejectionResponse{
				Kind:       it.Rejection.Kind(),
				Label:      it.Rejection.Label,
				Violations: it.Rejection.Violations,
			}
		}
		items = append(items, item)
	}
	return BatchResponse{
		OwnerID: res.OwnerID,
		Items:   items,
		Summary: BatchSummary{
			Saved:     res.Count(batch.StatusSaved),
			Unchanged: res.Count(batch.StatusUnchanged),
			Cleared:   res.Count(batch.StatusCleared),
			Rejected:  res.Count(batch.StatusRejected),
		},
		PendingFileDeletions: res.PendingFileDeletions,
	}
}
