package memory

import (
	"context"
	"sort"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/option"
)

// OptionRepo stores option sets.
type OptionRepo struct {
	store *Store
}

func (r *OptionRepo) Create(ctx context.Context, o *option.Option) error {
	return r.store.with(ctx, func(st *state) error {
		if _, ok := st.fields[o.FieldID]; !ok {
			return apperror.NewReference("field", o.FieldID.String())
		}
		if _, exists := st.options[o.ID]; exists {
			return apperror.NewDuplicate("option", "id", o.ID.String())
		}
		o.Seq = st.nextSeq()
		st.options[o.ID] = *o
		return nil
	})
}

func (r *OptionRepo) GetByID(ctx context.Context, optionID id.ID) (*option.Option, error) {
	var out *option.Option
	err := r.store.with(ctx, func(st *state) error {
		o, ok := st.options[optionID]
		if !ok {
			return apperror.NewNotFound("option", optionID.String())
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *OptionRepo) UpdateText(ctx context.Context, optionID id.ID, text string) error {
	return r.store.with(ctx, func(st *state) error {
		o, ok := st.options[optionID]
		if !ok {
			return apperror.NewNotFound("option", optionID.String())
		}
		o.Text = text
		st.options[optionID] = o
		return nil
	})
}

func (r *OptionRepo) SetStatus(ctx context.Context, optionID id.ID, status fieldtype.Status) error {
	return r.store.with(ctx, func(st *state) error {
		o, ok := st.options[optionID]
		if !ok {
			return apperror.NewNotFound("option", optionID.String())
		}
		o.Status = status
		st.options[optionID] = o
		return nil
	})
}

func (r *OptionRepo) ListByField(ctx context.Context, fieldID id.ID, includeDeleted bool) ([]*option.Option, error) {
	var out []*option.Option
	err := r.store.with(ctx, func(st *state) error {
		for _, o := range st.options {
			if o.FieldID != fieldID {
				continue
			}
			if o.Status == fieldtype.StatusDeleted && !includeDeleted {
				continue
			}
			o := o
			out = append(out, &o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortOptions(out)
	return out, nil
}

func (r *OptionRepo) ListByEntity(ctx context.Context, entityID id.ID) (map[id.ID][]*option.Option, error) {
	out := make(map[id.ID][]*option.Option)
	err := r.store.with(ctx, func(st *state) error {
		for _, o := range st.options {
			if !o.IsActive() {
				continue
			}
			row, ok := st.fields[o.FieldID]
			if !ok || row.def.EntityID != entityID || row.def.IsDeleted() {
				continue
			}
			o := o
			out[o.FieldID] = append(out[o.FieldID], &o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, opts := range out {
		sortOptions(opts)
	}
	return out, nil
}

func sortOptions(opts []*option.Option) {
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Position != opts[j].Position {
			return opts[i].Position < opts[j].Position
		}
		return opts[i].Seq < opts[j].Seq
	})
}
