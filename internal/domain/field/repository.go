package field

import (
	"context"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Repository defines persistence for field definitions.
type Repository interface {
	// Create inserts a definition with its locks and assigns d.Seq.
	Create(ctx context.Context, d *Definition, locks Locks) error

	// GetByID returns a definition in any status.
	// Returns apperror NOT_FOUND when the id does not exist.
	GetByID(ctx context.Context, fieldID id.ID) (*Definition, error)

	// GetLocks returns the lock set stored beside the definition.
	GetLocks(ctx context.Context, fieldID id.ID) (Locks, error)

	// Update overwrites label, toggles, order and constraints.
	Update(ctx context.Context, d *Definition, locks Locks) error

	// SetStatus moves the definition to status.
	SetStatus(ctx context.Context, fieldID id.ID, status fieldtype.Status) error

	// SetOrder changes the display order of one definition.
	SetOrder(ctx context.Context, fieldID id.ID, order int) error

	// ListByEntity returns non-deleted definitions of an owning entity
	// ordered by (Order, Seq). Inactive ones are included on request.
	ListByEntity(ctx context.Context, entityID id.ID, includeInactive bool) ([]*Definition, error)
}

// OptionSeeder creates the initial option set of a new selection field
// inside the caller's transaction.
type OptionSeeder interface {
	Seed(ctx context.Context, fieldID id.ID, texts []string) error
}
