package field

import (
	"context"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Lookup answers type and status questions about a field straight from the
// repository, in any status. The option service uses it to check the owning
// field and the batch updater to tell deleted fields from unknown ones.
type Lookup struct {
	repo Repository
}

// NewLookup creates a lookup backed by repo.
func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

// FieldTypeAndStatus resolves the type and lifecycle state of a field.
func (l *Lookup) FieldTypeAndStatus(ctx context.Context, fieldID id.ID) (fieldtype.Type, fieldtype.Status, error) {
	def, err := l.repo.GetByID(ctx, fieldID)
	if err != nil {
		return "", "", err
	}
	return def.Type, def.Status, nil
}

// Get returns the definition in any status, deleted included.
func (l *Lookup) Get(ctx context.Context, fieldID id.ID) (*Definition, error) {
	return l.repo.GetByID(ctx, fieldID)
}
