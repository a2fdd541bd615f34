package value

import (
	"context"
	"fmt"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// UniqueScope selects which stored values a unique field is compared with.
type UniqueScope string

const (
	// ScopeField compares with values of the same field definition held by
	// other owning entities.
	ScopeField UniqueScope = "field"

	// ScopeEntity compares with values of every non-deleted field of the
	// same field type defined on the same owning entity.
	ScopeEntity UniqueScope = "entity"
)

// ParseUniqueScope validates a configured scope.
func ParseUniqueScope(s string) (UniqueScope, error) {
	switch UniqueScope(s) {
	case ScopeField, ScopeEntity:
		return UniqueScope(s), nil
	case "":
		return ScopeField, nil
	}
	return "", fmt.Errorf("unknown unique scope %q", s)
}

// UniqueQuery asks whether any other value equal to Key exists in scope.
// Values of OwnerID for the same field are never counted, and values of
// deleted fields are ignored.
type UniqueQuery struct {
	Scope     UniqueScope
	FieldID   id.ID
	EntityID  id.ID
	FieldType fieldtype.Type
	OwnerID   id.ID
	Key       string
}

// Repository defines persistence for value records.
type Repository interface {
	// Get returns the value of one field for one owner, NOT_FOUND if unset.
	Get(ctx context.Context, fieldID, ownerID id.ID) (*Record, error)

	// ListByOwner returns every stored value of an owner regardless of the
	// status of the referenced field.
	ListByOwner(ctx context.Context, ownerID id.ID) ([]*Record, error)

	// Put replaces the value held for (FieldID, OwnerID).
	Put(ctx context.Context, r *Record) error

	// Delete removes the value held for (fieldID, ownerID), if any.
	Delete(ctx context.Context, fieldID, ownerID id.ID) error

	// ExistsEqual answers the uniqueness query.
	ExistsEqual(ctx context.Context, q UniqueQuery) (bool, error)
}
