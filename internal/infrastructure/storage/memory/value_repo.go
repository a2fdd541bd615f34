package memory

import (
	"context"
	"sort"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/value"
)

// ValueRepo stores value records keyed by (field, owner).
type ValueRepo struct {
	store *Store
}

func (r *ValueRepo) Get(ctx context.Context, fieldID, ownerID id.ID) (*value.Record, error) {
	var out *value.Record
	err := r.store.with(ctx, func(st *state) error {
		rec, ok := st.values[valueKey{fieldID, ownerID}]
		if !ok {
			return apperror.NewNotFound("value", fieldID.String())
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *ValueRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]*value.Record, error) {
	var out []*value.Record
	err := r.store.with(ctx, func(st *state) error {
		for k, rec := range st.values {
			if k.ownerID != ownerID {
				continue
			}
			rec := rec
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *ValueRepo) Put(ctx context.Context, rec *value.Record) error {
	return r.store.with(ctx, func(st *state) error {
		row, ok := st.fields[rec.FieldID]
		if !ok {
			return apperror.NewReference("field", rec.FieldID.String())
		}
		if row.def.Type != rec.FieldType {
			return apperror.NewTypeMismatch("value type differs from field type").
				WithDetail("field_id", rec.FieldID.String())
		}
		k := valueKey{rec.FieldID, rec.OwnerID}
		if prev, exists := st.values[k]; exists {
			rec.ID = prev.ID
		}
		st.values[k] = *rec
		return nil
	})
}

func (r *ValueRepo) Delete(ctx context.Context, fieldID, ownerID id.ID) error {
	return r.store.with(ctx, func(st *state) error {
		delete(st.values, valueKey{fieldID, ownerID})
		return nil
	})
}

func (r *ValueRepo) ExistsEqual(ctx context.Context, q value.UniqueQuery) (bool, error) {
	var found bool
	err := r.store.with(ctx, func(st *state) error {
		for k, rec := range st.values {
			if rec.UniqueKey != q.Key {
				continue
			}
			if k.fieldID == q.FieldID && k.ownerID == q.OwnerID {
				continue
			}
			row, ok := st.fields[k.fieldID]
			if !ok || row.def.IsDeleted() {
				continue
			}
			switch q.Scope {
			case value.ScopeEntity:
				if row.def.EntityID != q.EntityID || row.def.Type != q.FieldType {
					continue
				}
			default:
				if k.fieldID != q.FieldID {
					continue
				}
			}
			found = true
			return nil
		}
		return nil
	})
	return found, err
}
