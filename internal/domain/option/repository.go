package option

import (
	"context"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Repository defines persistence for options.
type Repository interface {
	// Create inserts an option and assigns o.Seq.
	Create(ctx context.Context, o *Option) error

	// GetByID returns an option in any status.
	GetByID(ctx context.Context, optionID id.ID) (*Option, error)

	// UpdateText changes the display text.
	UpdateText(ctx context.Context, optionID id.ID, text string) error

	// SetStatus moves the option to status.
	SetStatus(ctx context.Context, optionID id.ID, status fieldtype.Status) error

	// ListByField returns options of one field ordered by (Position, Seq).
	// Deleted options are included only when includeDeleted is set.
	ListByField(ctx context.Context, fieldID id.ID, includeDeleted bool) ([]*Option, error)

	// ListByEntity returns active options of every non-deleted field of an
	// owning entity, grouped by field and ordered within each group.
	ListByEntity(ctx context.Context, entityID id.ID) (map[id.ID][]*Option, error)
}

// FieldLookup resolves the owning field of an option.
type FieldLookup interface {
	FieldTypeAndStatus(ctx context.Context, fieldID id.ID) (fieldtype.Type, fieldtype.Status, error)
}
