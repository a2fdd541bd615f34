package batch

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
	"customfields/internal/domain/validation"
	"customfields/internal/domain/value"
	"customfields/internal/infrastructure/storage/memory"
)

type fixture struct {
	store   *memory.Store
	fields  *field.Service
	options *option.Service
	updater *Updater
	entity  id.ID
}

func newFixture(t *testing.T, maxItems int) *fixture {
	t.Helper()
	store := memory.New()
	values := store.Values()
	options := option.NewService(option.ServiceConfig{
		Repo:      store.Options(),
		Fields:    field.NewLookup(store.Fields()),
		TxManager: store,
	})
	fields := field.NewService(field.ServiceConfig{
		Repo:      store.Fields(),
		TxManager: store,
		Options:   options,
	})
	updater := NewUpdater(UpdaterConfig{
		Fields:    field.NewLookup(store.Fields()),
		Options:   options,
		Values:    values,
		Engine:    validation.NewEngine(validation.Config{Uniqueness: values, Scope: value.ScopeField}),
		TxManager: store,
		MaxItems:  maxItems,
	})
	return &fixture{store: store, fields: fields, options: options, updater: updater, entity: id.New()}
}

func (f *fixture) create(t *testing.T, view field.WriteView) *field.Definition {
	t.Helper()
	def, err := f.fields.Create(context.Background(), f.entity, view)
	require.NoError(t, err)
	return def
}

func TestApply_MixedBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	name := f.create(t, field.WriteView{Label: "Name", FieldType: fieldtype.Text})
	maxAge := decimal.NewFromInt(120)
	age := f.create(t, field.WriteView{Label: "Age", FieldType: fieldtype.Number, MaxValue: &maxAge})
	owner := id.New()

	res, err := f.updater.Apply(ctx, owner, []Submission{
		{FieldID: name.ID, Value: "Ada"},
		{FieldID: age.ID, Value: 150},
	}, "user-1")
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	assert.Equal(t, StatusSaved, res.Items[0].Status)
	assert.Equal(t, "Ada", res.Items[0].Value)
	assert.Equal(t, StatusRejected, res.Items[1].Status)
	assert.Equal(t, []string{validation.ConstraintRange}, res.Items[1].Rejection.Constraints())
	assert.Equal(t, "Age", res.Items[1].Rejection.Label)

	stored, err := f.store.Values().Get(ctx, name.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UpdatedBy)
	_, err = f.store.Values().Get(ctx, age.ID, owner)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApply_IdempotentResubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	amount := f.create(t, field.WriteView{Label: "Price", FieldType: fieldtype.Amount})
	owner := id.New()

	res, err := f.updater.Apply(ctx, owner, []Submission{{FieldID: amount.ID, Value: "9.9"}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, res.Items[0].Status)
	assert.Equal(t, "9.90", res.Items[0].Value)

	res, err = f.updater.Apply(ctx, owner, []Submission{{FieldID: amount.ID, Value: res.Items[0].Value}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, res.Items[0].Status)
	assert.Empty(t, res.PendingFileDeletions)
}

func TestApply_FileReplacementReportsPriorRef(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	photo := f.create(t, field.WriteView{Label: "Photo", FieldType: fieldtype.Image})
	owner := id.New()

	file := func(ref string) map[string]any {
		return map[string]any{"ref": ref, "name": ref + ".png", "size": 100.0}
	}

	res, err := f.updater.Apply(ctx, owner, []Submission{{FieldID: photo.ID, Value: file("f1")}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, res.Items[0].Status)
	assert.Empty(t, res.PendingFileDeletions)

	res, err = f.updater.Apply(ctx, owner, []Submission{{FieldID: photo.ID, Value: file("f2")}}, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, res.PendingFileDeletions)

	// Same ref again, as a bare identifier.
	res, err = f.updater.Apply(ctx, owner, []Submission{{FieldID: photo.ID, Value: "f2"}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, res.Items[0].Status)
	assert.Empty(t, res.PendingFileDeletions)

	res, err = f.updater.Apply(ctx, owner, []Submission{{FieldID: photo.ID, Value: nil}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusCleared, res.Items[0].Status)
	assert.Equal(t, []string{"f2"}, res.PendingFileDeletions)
}

func TestApply_DuplicateFieldLastWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	docs := f.create(t, field.WriteView{Label: "Docs", FieldType: fieldtype.MultiFile})
	owner := id.New()

	ref := func(r string) map[string]any { return map[string]any{"ref": r, "name": r + ".pdf", "size": 1.0} }

	_, err := f.updater.Apply(ctx, owner, []Submission{{FieldID: docs.ID, Value: []any{ref("r1")}}}, "u")
	require.NoError(t, err)

	res, err := f.updater.Apply(ctx, owner, []Submission{
		{FieldID: docs.ID, Value: []any{ref("r2")}},
		{FieldID: docs.ID, Value: []any{ref("r1")}},
	}, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, res.PendingFileDeletions)

	stored, err := f.store.Values().Get(ctx, docs.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, stored.FileRefs())
}

func TestApply_DeletedFieldIsReferenceError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	note := f.create(t, field.WriteView{Label: "Note", FieldType: fieldtype.Textarea})
	owner := id.New()

	_, err := f.updater.Apply(ctx, owner, []Submission{{FieldID: note.ID, Value: "kept"}}, "u")
	require.NoError(t, err)
	require.NoError(t, f.fields.Delete(ctx, note.ID))

	res, err := f.updater.Apply(ctx, owner, []Submission{
		{FieldID: note.ID, Value: "new"},
		{FieldID: id.New(), Value: "x"},
	}, "u")
	require.NoError(t, err)
	for _, item := range res.Items {
		assert.Equal(t, StatusRejected, item.Status)
		assert.Equal(t, validation.KindReference, item.Rejection.Kind())
	}

	stored, err := f.store.Values().Get(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "kept", stored.Value())
}

func TestApply_InactiveFieldAcceptsValues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	def := f.create(t, field.WriteView{Label: "Legacy", FieldType: fieldtype.Text})
	require.NoError(t, f.fields.Deactivate(ctx, def.ID))

	res, err := f.updater.Apply(ctx, id.New(), []Submission{{FieldID: def.ID, Value: "v"}}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, res.Items[0].Status)
}

func TestApply_SelectionUsesActiveOptions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	color := f.create(t, field.WriteView{Label: "Color", FieldType: fieldtype.SingleSelect, Options: []string{"Red", "Blue"}})
	opts, err := f.options.ListByField(ctx, color.ID)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	require.NoError(t, f.options.Delete(ctx, opts[1].ID))

	res, err := f.updater.Apply(ctx, id.New(), []Submission{
		{FieldID: color.ID, Value: opts[0].ID.String()},
		{FieldID: color.ID, Value: opts[1].ID.String()},
	}, "u")
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, res.Items[0].Status)
	assert.Equal(t, StatusRejected, res.Items[1].Status)
	assert.True(t, res.Items[1].Rejection.Has(validation.ConstraintOptions))
}

func TestApply_UniqueAcrossOwners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	email := f.create(t, field.WriteView{Label: "Email", FieldType: fieldtype.Email, Unique: field.LockedBool{Value: true}})

	res, err := f.updater.Apply(ctx, id.New(), []Submission{{FieldID: email.ID, Value: "a@b.io"}}, "u")
	require.NoError(t, err)
	require.Equal(t, StatusSaved, res.Items[0].Status)

	res, err = f.updater.Apply(ctx, id.New(), []Submission{{FieldID: email.ID, Value: "A@B.io"}}, "u")
	require.NoError(t, err)
	assert.Equal(t, validation.KindUniqueness, res.Items[0].Rejection.Kind())
}

type flakyValues struct {
	value.Repository
	failOn id.ID
}

func (r *flakyValues) Get(ctx context.Context, fieldID, ownerID id.ID) (*value.Record, error) {
	if fieldID == r.failOn {
		return nil, errors.New("connection refused")
	}
	return r.Repository.Get(ctx, fieldID, ownerID)
}

func TestApply_TransportErrorAbortsBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	flaky := &flakyValues{Repository: store.Values()}
	fields := field.NewService(field.ServiceConfig{Repo: store.Fields(), TxManager: store})
	updater := NewUpdater(UpdaterConfig{
		Fields:    field.NewLookup(store.Fields()),
		Values:    flaky,
		Engine:    validation.NewEngine(validation.Config{}),
		TxManager: store,
	})

	entity := id.New()
	var defs []*field.Definition
	for _, label := range []string{"First", "Second", "Third"} {
		def, err := fields.Create(ctx, entity, field.WriteView{Label: label, FieldType: fieldtype.Text})
		require.NoError(t, err)
		defs = append(defs, def)
	}
	flaky.failOn = defs[1].ID
	owner := id.New()

	res, err := updater.Apply(ctx, owner, []Submission{
		{FieldID: defs[0].ID, Value: "one"},
		{FieldID: defs[1].ID, Value: "two"},
		{FieldID: defs[2].ID, Value: "three"},
	}, "u")
	assert.True(t, apperror.HasCode(err, apperror.CodeTransport))
	require.NotNil(t, res)
	require.Len(t, res.Items, 1, "only items committed before the failure are reported")
	assert.Equal(t, StatusSaved, res.Items[0].Status)

	_, err = store.Values().Get(ctx, defs[0].ID, owner)
	assert.NoError(t, err, "items before the failure stay committed")
	_, err = store.Values().Get(ctx, defs[2].ID, owner)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApply_TransportErrorKeepsReleasedFileRefs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	flaky := &flakyValues{Repository: store.Values()}
	fields := field.NewService(field.ServiceConfig{Repo: store.Fields(), TxManager: store})
	updater := NewUpdater(UpdaterConfig{
		Fields:    field.NewLookup(store.Fields()),
		Values:    flaky,
		Engine:    validation.NewEngine(validation.Config{}),
		TxManager: store,
	})

	entity := id.New()
	photo, err := fields.Create(ctx, entity, field.WriteView{Label: "Photo", FieldType: fieldtype.Image})
	require.NoError(t, err)
	note, err := fields.Create(ctx, entity, field.WriteView{Label: "Note", FieldType: fieldtype.Text})
	require.NoError(t, err)
	owner := id.New()

	file := func(ref string) map[string]any {
		return map[string]any{"ref": ref, "name": ref + ".png", "size": 100.0}
	}
	_, err = updater.Apply(ctx, owner, []Submission{{FieldID: photo.ID, Value: file("f1")}}, "u")
	require.NoError(t, err)

	flaky.failOn = note.ID
	res, err := updater.Apply(ctx, owner, []Submission{
		{FieldID: photo.ID, Value: file("f2")},
		{FieldID: note.ID, Value: "hello"},
	}, "u")
	assert.True(t, apperror.HasCode(err, apperror.CodeTransport))
	require.NotNil(t, res)
	assert.Equal(t, []string{"f1"}, res.PendingFileDeletions)

	stored, err := store.Values().Get(ctx, photo.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"f2"}, stored.FileRefs())
}

func TestApply_Guards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	_, err := f.updater.Apply(ctx, id.New(), []Submission{{FieldID: id.New()}, {FieldID: id.New()}}, "u")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.updater.Apply(ctx, id.Nil, nil, "u")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
