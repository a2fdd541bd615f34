package memory

import (
	"context"
	"sort"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
)

// FieldRepo stores field definitions.
type FieldRepo struct {
	store *Store
}

func (r *FieldRepo) Create(ctx context.Context, d *field.Definition, locks field.Locks) error {
	return r.store.with(ctx, func(st *state) error {
		if _, exists := st.fields[d.ID]; exists {
			return apperror.NewDuplicate("field", "id", d.ID.String())
		}
		d.Seq = st.nextSeq()
		st.fields[d.ID] = fieldRow{def: *d, locks: locks}
		return nil
	})
}

func (r *FieldRepo) GetByID(ctx context.Context, fieldID id.ID) (*field.Definition, error) {
	var out *field.Definition
	err := r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[fieldID]
		if !ok {
			return apperror.NewNotFound("field", fieldID.String())
		}
		def := row.def
		out = &def
		return nil
	})
	return out, err
}

func (r *FieldRepo) GetLocks(ctx context.Context, fieldID id.ID) (field.Locks, error) {
	var out field.Locks
	err := r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[fieldID]
		if !ok {
			return apperror.NewNotFound("field", fieldID.String())
		}
		out = row.locks
		return nil
	})
	return out, err
}

func (r *FieldRepo) Update(ctx context.Context, d *field.Definition, locks field.Locks) error {
	return r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[d.ID]
		if !ok {
			return apperror.NewNotFound("field", d.ID.String())
		}
		next := *d
		next.EntityID = row.def.EntityID
		next.Type = row.def.Type
		next.Seq = row.def.Seq
		next.Status = row.def.Status
		st.fields[d.ID] = fieldRow{def: next, locks: locks}
		return nil
	})
}

func (r *FieldRepo) SetStatus(ctx context.Context, fieldID id.ID, status fieldtype.Status) error {
	return r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[fieldID]
		if !ok {
			return apperror.NewNotFound("field", fieldID.String())
		}
		row.def.Status = status
		st.fields[fieldID] = row
		return nil
	})
}

func (r *FieldRepo) SetOrder(ctx context.Context, fieldID id.ID, order int) error {
	return r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[fieldID]
		if !ok {
			return apperror.NewNotFound("field", fieldID.String())
		}
		row.def.Order = order
		st.fields[fieldID] = row
		return nil
	})
}

func (r *FieldRepo) ListByEntity(ctx context.Context, entityID id.ID, includeInactive bool) ([]*field.Definition, error) {
	var out []*field.Definition
	err := r.store.with(ctx, func(st *state) error {
		for _, row := range st.fields {
			if row.def.EntityID != entityID {
				continue
			}
			switch row.def.Status {
			case fieldtype.StatusDeleted:
				continue
			case fieldtype.StatusInactive:
				if !includeInactive {
					continue
				}
			}
			def := row.def
			out = append(out, &def)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}
