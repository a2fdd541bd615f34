package field_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/option"
	"customfields/internal/infrastructure/storage/memory"
)

func newServices(repo field.Repository, store *memory.Store) (*field.Service, *option.Service) {
	options := option.NewService(option.ServiceConfig{
		Repo:      store.Options(),
		Fields:    field.NewLookup(repo),
		TxManager: store,
	})
	fields := field.NewService(field.ServiceConfig{
		Repo:      repo,
		TxManager: store,
		Options:   options,
	})
	return fields, options
}

func TestService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, _ := newServices(store.Fields(), store)
	entity := id.New()

	def, err := svc.Create(ctx, entity, field.WriteView{Label: "  Nickname ", FieldType: fieldtype.Text})
	require.NoError(t, err)
	assert.Equal(t, fieldtype.StatusActive, def.Status)
	assert.Equal(t, "Nickname", def.Label)
	assert.Equal(t, entity, def.EntityID)
	assert.NotZero(t, def.Seq)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, options := newServices(store.Fields(), store)
	entity := id.New()

	tests := []struct {
		name string
		view field.WriteView
	}{
		{"empty label", field.WriteView{Label: " ", FieldType: fieldtype.Text}},
		{"unknown type", field.WriteView{Label: "X", FieldType: "slider"}},
		{"selection without options", field.WriteView{Label: "X", FieldType: fieldtype.Radio}},
		{"options on text", field.WriteView{Label: "X", FieldType: fieldtype.Text, Options: []string{"a"}}},
		{"bad regex", field.WriteView{Label: "X", FieldType: fieldtype.Text, Regex: ptr("(")}},
		{"min above max", field.WriteView{Label: "X", FieldType: fieldtype.Text, MinLength: ptr(5), MaxLength: ptr(2)}},
		{"pdf on image", field.WriteView{Label: "X", FieldType: fieldtype.Image, FileTypes: []fieldtype.Extension{fieldtype.ExtPDF}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, entity, tt.view)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
		})
	}

	def, err := svc.Create(ctx, entity, field.WriteView{Label: "Size", FieldType: fieldtype.MultiSelect, Options: []string{"S", " ", "M"}})
	require.NoError(t, err)
	opts, err := options.ListByField(ctx, def.ID)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "S", opts[0].Text)
	assert.Equal(t, "M", opts[1].Text)
}

func TestService_UpdateRespectsLocks(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, _ := newServices(store.Fields(), store)

	def, err := svc.Create(ctx, id.New(), field.WriteView{
		Label:     "Tax ID",
		FieldType: fieldtype.Text,
		Required:  field.LockedBool{Value: true, Locked: true},
		Visible:   field.LockedBool{Value: true},
	})
	require.NoError(t, err)

	view, err := svc.GetForEdit(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, field.LockedBool{Value: true, Locked: true}, view.Required)

	view.Required.Value = false
	_, err = svc.Update(ctx, def.ID, view)
	assert.True(t, apperror.HasCode(err, apperror.CodeAttributeLocked))

	view.Required = field.LockedBool{Value: true, Locked: false}
	_, err = svc.Update(ctx, def.ID, view)
	assert.True(t, apperror.HasCode(err, apperror.CodeAttributeLocked), "unlocking is a change too")

	view.Required = field.LockedBool{Value: true, Locked: true}
	view.Visible = field.LockedBool{Value: false, Locked: true}
	view.Label = "Tax number"
	updated, err := svc.Update(ctx, def.ID, view)
	require.NoError(t, err)
	assert.Equal(t, "Tax number", updated.Label)
	assert.False(t, updated.Visible)

	locks, err := store.Fields().GetLocks(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, field.Locks{Required: true, Visible: true}, locks)

	view.FieldType = fieldtype.Number
	_, err = svc.Update(ctx, def.ID, view)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, _ := newServices(store.Fields(), store)
	entity := id.New()

	def, err := svc.Create(ctx, entity, field.WriteView{Label: "Age", FieldType: fieldtype.Number})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, def.ID))
	require.NoError(t, svc.Deactivate(ctx, def.ID), "same status is a no-op")
	list, err := svc.List(ctx, entity, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Activate(ctx, def.ID))
	require.NoError(t, svc.Delete(ctx, def.ID))

	assert.True(t, apperror.HasCode(svc.Activate(ctx, def.ID), apperror.CodeState))
	assert.True(t, apperror.HasCode(svc.Delete(ctx, def.ID), apperror.CodeState))

	view := field.ToWriteView(def, field.Locks{})
	_, err = svc.Update(ctx, def.ID, view)
	assert.True(t, apperror.HasCode(err, apperror.CodeState))

	_, err = svc.Get(ctx, def.ID)
	assert.True(t, apperror.IsNotFound(err), "deleted definitions are not retrievable")
	_, err = svc.GetForEdit(ctx, def.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := field.NewLookup(store.Fields()).Get(ctx, def.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted(), "the lookup still resolves deleted definitions")

	list, err = svc.List(ctx, entity, true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_ReorderTiesAndScope(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, _ := newServices(store.Fields(), store)
	entity := id.New()

	a, err := svc.Create(ctx, entity, field.WriteView{Label: "A", FieldType: fieldtype.Text})
	require.NoError(t, err)
	b, err := svc.Create(ctx, entity, field.WriteView{Label: "B", FieldType: fieldtype.Text})
	require.NoError(t, err)

	require.NoError(t, svc.Reorder(ctx, entity, map[id.ID]int{a.ID: 2, b.ID: 1}))
	list, err := svc.List(ctx, entity, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, labels(list))

	require.NoError(t, svc.Reorder(ctx, entity, map[id.ID]int{a.ID: 5, b.ID: 5}))
	list, err = svc.List(ctx, entity, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, labels(list), "ties keep insertion order")

	foreign, err := svc.Create(ctx, id.New(), field.WriteView{Label: "F", FieldType: fieldtype.Text})
	require.NoError(t, err)
	err = svc.Reorder(ctx, entity, map[id.ID]int{a.ID: 0, foreign.ID: 0})
	assert.True(t, apperror.HasCode(err, apperror.CodeReference))
}

// failingRepo fails SetOrder for one field id.
type failingRepo struct {
	field.Repository
	failOn id.ID
}

func (r *failingRepo) SetOrder(ctx context.Context, fieldID id.ID, order int) error {
	if fieldID == r.failOn {
		return errors.New("interrupted")
	}
	return r.Repository.SetOrder(ctx, fieldID, order)
}

func TestService_ReorderIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := &failingRepo{Repository: store.Fields()}
	svc, _ := newServices(repo, store)
	entity := id.New()

	a, err := svc.Create(ctx, entity, field.WriteView{Label: "A", FieldType: fieldtype.Text})
	require.NoError(t, err)
	b, err := svc.Create(ctx, entity, field.WriteView{Label: "B", FieldType: fieldtype.Text})
	require.NoError(t, err)

	// Whichever id sorts last fails, after the other has been written.
	repo.failOn = a.ID
	if a.ID.String() < b.ID.String() {
		repo.failOn = b.ID
	}
	err = svc.Reorder(ctx, entity, map[id.ID]int{a.ID: 2, b.ID: 1})
	require.Error(t, err)

	list, err := svc.List(ctx, entity, false)
	require.NoError(t, err)
	for _, d := range list {
		assert.Zero(t, d.Order, d.Label)
	}
}

func TestViews_Projection(t *testing.T) {
	floor := decimal.NewFromInt(1)
	size := field.ByteSize(2048)
	view := field.WriteView{
		Label:     "Score",
		FieldType: fieldtype.Number,
		Required:  field.LockedBool{Value: true, Locked: true},
		Unique:    field.LockedBool{Value: false, Locked: true},
		MinValue:  &floor,
		FileSize:  &size,
	}
	def, locks := field.FromWriteView(view)
	assert.Equal(t, field.Locks{Required: true, Unique: true}, locks)
	assert.Equal(t, int64(2048), *def.FileSize)

	read := field.ToReadView(&def)
	assert.True(t, read.Required)
	assert.False(t, read.Unique)

	back := field.ToWriteView(&def, locks)
	assert.Equal(t, view, back)
}

func TestByteSize_UnmarshalJSON(t *testing.T) {
	var b field.ByteSize
	require.NoError(t, b.UnmarshalJSON([]byte(`"5MB"`)))
	assert.Equal(t, field.ByteSize(5_000_000), b)
	require.NoError(t, b.UnmarshalJSON([]byte(`1024`)))
	assert.Equal(t, field.ByteSize(1024), b)
	assert.Error(t, b.UnmarshalJSON([]byte(`"lots"`)))
	assert.Equal(t, "1.0 kB", b.String())
}

func ptr[T any](v T) *T { return &v }

func labels(defs []*field.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Label)
	}
	return out
}
