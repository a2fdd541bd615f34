package customfield_repo

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/value"
)

func TestListFieldsQuery_SQL(t *testing.T) {
	entityID := id.New()
	cols := strings.Join(fieldColumns, ", ")

	sql, args, err := listFieldsQuery(entityID, false).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+cols+" FROM custom_fields WHERE entity_id = $1 AND status = $2 ORDER BY field_order, seq", sql)
	require.Len(t, args, 2)
	assert.Equal(t, "active", args[1])

	sql, args, err = listFieldsQuery(entityID, true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+cols+" FROM custom_fields WHERE entity_id = $1 AND status <> $2 ORDER BY field_order, seq", sql)
	assert.Equal(t, "deleted", args[1])
}

func TestEntityOptionsQuery_SQL(t *testing.T) {
	sql, args, err := entityOptionsQuery(id.New()).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT o.id, o.field_id, o.text, o.position, o.seq, o.status FROM custom_field_options o"), sql)
	assert.True(t, strings.HasSuffix(sql,
		"JOIN custom_fields f ON f.id = o.field_id WHERE f.entity_id = $1 AND f.status <> $2 AND o.status = $3 ORDER BY o.field_id, o.position, o.seq"), sql)
	assert.Equal(t, []any{args[0], "deleted", "active"}, args)
}

func TestListOptionsQuery_SQL(t *testing.T) {
	sql, _, err := listOptionsQuery(id.New(), true).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "status <>")

	sql, _, err = listOptionsQuery(id.New(), false).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE field_id = $1 AND status <> $2 ORDER BY position, seq")
}

func TestExistsEqualQuery_FieldScope(t *testing.T) {
	sql, args, err := existsEqualQuery(value.UniqueQuery{
		Scope:   value.ScopeField,
		FieldID: id.New(),
		OwnerID: id.New(),
		Key:     "a@b.io",
	}).ToSql()
	require.NoError(t, err)

	want := "SELECT EXISTS ( SELECT 1 FROM custom_field_values v JOIN custom_fields f ON f.id = v.field_id " +
		"WHERE v.unique_key = $1 AND f.status <> $2 AND v.field_id = $3 AND v.owner_id <> $4 )"
	assert.Equal(t, want, sql)
	require.Len(t, args, 4)
	assert.Equal(t, "a@b.io", args[0])
}

func TestExistsEqualQuery_EntityScope(t *testing.T) {
	fieldID, ownerID := id.New(), id.New()
	sql, args, err := existsEqualQuery(value.UniqueQuery{
		Scope:     value.ScopeEntity,
		FieldID:   fieldID,
		EntityID:  id.New(),
		FieldType: fieldtype.Email,
		OwnerID:   ownerID,
		Key:       "k",
	}).ToSql()
	require.NoError(t, err)

	want := "SELECT EXISTS ( SELECT 1 FROM custom_field_values v JOIN custom_fields f ON f.id = v.field_id " +
		"WHERE v.unique_key = $1 AND f.status <> $2 AND f.entity_id = $3 AND f.field_type = $4 " +
		"AND NOT (v.field_id = $5 AND v.owner_id = $6) )"
	assert.Equal(t, want, sql)
	require.Len(t, args, 6)
	assert.Equal(t, "email", args[3])
	assert.Equal(t, fieldID, args[4])
	assert.Equal(t, ownerID, args[5])
}

func TestPutValueQuery_Upserts(t *testing.T) {
	rec, err := value.New(id.New(), id.New(), fieldtype.Time, value.TimeSlot{Time: value.TimeOfDay{Hour: 9, Minute: 30}}, "09:30:00")
	require.NoError(t, err)
	row, err := toValueRow(rec)
	require.NoError(t, err)
	assert.Nil(t, row.TextValue)
	assert.Nil(t, row.JSONValue)
	assert.False(t, row.DateValue.Valid)
	assert.True(t, row.TimeValue.Valid)
	assert.Equal(t, int64(34_200_000_000), row.TimeValue.Microseconds)

	sql, args, err := putValueQuery(&row).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO custom_field_values (date_value,field_id,field_type,id,json_value,owner_id,text_value,time_value,unique_key,updated_at,updated_by) VALUES ("), sql)
	assert.Contains(t, sql, "ON CONFLICT (field_id, owner_id) DO UPDATE SET")
	assert.True(t, strings.HasSuffix(sql, "RETURNING id"))
	assert.Len(t, args, len(valueColumns))
}

func TestValueRow_RoundTrip(t *testing.T) {
	doc, err := value.NewJSONSlot([]string{"a"})
	require.NoError(t, err)
	rec, err := value.New(id.New(), id.New(), fieldtype.Tag, doc, "a")
	require.NoError(t, err)
	rec.UpdatedBy = "u"

	row, err := toValueRow(rec)
	require.NoError(t, err)
	back, err := row.record()
	require.NoError(t, err)
	assert.True(t, back.SameValue(rec))
	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, "u", back.UpdatedBy)

	row.FieldType = string(fieldtype.Number)
	_, err = row.record()
	assert.Error(t, err, "json slot cannot back a number field")
}

func TestFieldRow_RoundTrip(t *testing.T) {
	lo := decimal.RequireFromString("1.5")
	maxLen := 10
	def := &field.Definition{
		ID:       id.New(),
		EntityID: id.New(),
		Label:    "Score",
		Type:     fieldtype.Image,
		Unique:   true,
		Status:   fieldtype.StatusInactive,
		Constraints: field.Constraints{
			MinValue:  &lo,
			MaxLength: &maxLen,
			FileTypes: []fieldtype.Extension{fieldtype.ExtPNG},
		},
	}
	locks := field.Locks{Unique: true}

	row := toFieldRow(def, locks)
	assert.Equal(t, []string{"png"}, row.FileTypes)
	assert.True(t, row.MinValue.Valid)
	assert.False(t, row.MaxValue.Valid)

	back := row.definition()
	assert.Equal(t, def.Label, back.Label)
	assert.Equal(t, def.Type, back.Type)
	assert.True(t, back.MinValue.Equal(lo))
	assert.Nil(t, back.MaxValue)
	assert.Equal(t, def.FileTypes, back.FileTypes)
	assert.Equal(t, locks, row.locks())

	set := make(map[string]bool)
	for _, c := range fieldColumns {
		set[c] = true
	}
	for _, c := range mutableFieldColumns {
		assert.True(t, set[c], c)
	}
}
