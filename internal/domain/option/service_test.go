package option_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/option"
	"customfields/internal/infrastructure/storage/memory"
)

type env struct {
	fields  *field.Service
	options *option.Service
	entity  id.ID
}

func newEnv() *env {
	store := memory.New()
	options := option.NewService(option.ServiceConfig{
		Repo:      store.Options(),
		Fields:    field.NewLookup(store.Fields()),
		TxManager: store,
	})
	fields := field.NewService(field.ServiceConfig{Repo: store.Fields(), TxManager: store, Options: options})
	return &env{fields: fields, options: options, entity: id.New()}
}

func (e *env) selection(t *testing.T, texts ...string) *field.Definition {
	t.Helper()
	def, err := e.fields.Create(context.Background(), e.entity, field.WriteView{
		Label:     "Choice",
		FieldType: fieldtype.Checkbox,
		Options:   texts,
	})
	require.NoError(t, err)
	return def
}

func TestService_CreateAppends(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	def := e.selection(t, "a", "b")

	c, err := e.options.Create(ctx, def.ID, " c ")
	require.NoError(t, err)
	assert.Equal(t, "c", c.Text)
	assert.Equal(t, 2, c.Position)

	list, err := e.options.ListByField(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts(list))
}

func TestService_CreateChecksField(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	_, err := e.options.Create(ctx, id.New(), "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeReference))

	text, err := e.fields.Create(ctx, e.entity, field.WriteView{Label: "T", FieldType: fieldtype.Tag})
	require.NoError(t, err)
	_, err = e.options.Create(ctx, text.ID, "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "tags have no option set")

	def := e.selection(t, "a")
	require.NoError(t, e.fields.Delete(ctx, def.ID))
	_, err = e.options.Create(ctx, def.ID, "b")
	assert.True(t, apperror.HasCode(err, apperror.CodeReference))

	_, err = e.options.Create(ctx, e.selection(t, "a").ID, "  ")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	def := e.selection(t, "a", "b")
	list, err := e.options.ListByField(ctx, def.ID)
	require.NoError(t, err)
	a, b := list[0], list[1]

	require.NoError(t, e.options.Deactivate(ctx, a.ID))
	list, err = e.options.ListByField(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, texts(list))

	all, err := e.options.ForValidation(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "inactive options stay visible to validation")

	require.NoError(t, e.options.Activate(ctx, a.ID))
	require.NoError(t, e.options.Delete(ctx, b.ID))
	assert.True(t, apperror.HasCode(e.options.Activate(ctx, b.ID), apperror.CodeState))

	_, err = e.options.UpdateText(ctx, b.ID, "bee")
	assert.True(t, apperror.HasCode(err, apperror.CodeState))

	renamed, err := e.options.UpdateText(ctx, a.ID, "ay")
	require.NoError(t, err)
	assert.Equal(t, "ay", renamed.Text)

	all, err = e.options.ForValidation(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ay"}, texts(all))
}

func TestService_ListByEntity(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	first := e.selection(t, "a", "b")
	second := e.selection(t, "x")
	gone := e.selection(t, "z")
	require.NoError(t, e.fields.Delete(ctx, gone.ID))

	grouped, err := e.options.ListByEntity(ctx, e.entity)
	require.NoError(t, err)
	assert.Len(t, grouped, 2)
	assert.Equal(t, []string{"a", "b"}, texts(grouped[first.ID]))
	assert.Equal(t, []string{"x"}, texts(grouped[second.ID]))
}

func TestActiveIDs(t *testing.T) {
	on := &option.Option{ID: id.New(), Status: fieldtype.StatusActive}
	off := &option.Option{ID: id.New(), Status: fieldtype.StatusInactive}
	ids := option.ActiveIDs([]*option.Option{on, off})
	assert.Len(t, ids, 1)
	assert.Contains(t, ids, on.ID)
}

func texts(opts []*option.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Text)
	}
	return out
}
