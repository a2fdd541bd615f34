package customfield_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/infrastructure/storage/postgres"
)

var _ field.Repository = (*FieldRepo)(nil)

// fieldRow mirrors one custom_fields row.
type fieldRow struct {
	ID             id.ID               `db:"id"`
	Seq            int64               `db:"seq"`
	EntityID       id.ID               `db:"entity_id"`
	Label          string              `db:"label"`
	FieldType      string              `db:"field_type"`
	Required       bool                `db:"required"`
	RequiredLocked bool                `db:"required_locked"`
	IsUnique       bool                `db:"is_unique"`
	UniqueLocked   bool                `db:"unique_locked"`
	Visible        bool                `db:"visible"`
	VisibleLocked  bool                `db:"visible_locked"`
	FieldOrder     int                 `db:"field_order"`
	Status         string              `db:"status"`
	Placeholder    *string             `db:"placeholder"`
	MinLength      *int                `db:"min_length"`
	MaxLength      *int                `db:"max_length"`
	Regex          *string             `db:"regex"`
	MinValue       decimal.NullDecimal `db:"min_value"`
	MaxValue       decimal.NullDecimal `db:"max_value"`
	FileSize       *int64              `db:"file_size"`
	FileTypes      []string            `db:"file_types"`
}

var fieldColumns = postgres.ExtractDBColumns[fieldRow]()

// mutableFieldColumns are the columns Update may overwrite.
var mutableFieldColumns = []string{
	"label", "required", "required_locked", "is_unique", "unique_locked",
	"visible", "visible_locked", "field_order", "placeholder", "min_length",
	"max_length", "regex", "min_value", "max_value", "file_size", "file_types",
}

func toFieldRow(d *field.Definition, locks field.Locks) fieldRow {
	row := fieldRow{
		ID:             d.ID,
		Seq:            d.Seq,
		EntityID:       d.EntityID,
		Label:          d.Label,
		FieldType:      string(d.Type),
		Required:       d.Required,
		RequiredLocked: locks.Required,
		IsUnique:       d.Unique,
		UniqueLocked:   locks.Unique,
		Visible:        d.Visible,
		VisibleLocked:  locks.Visible,
		FieldOrder:     d.Order,
		Status:         string(d.Status),
		Placeholder:    d.Placeholder,
		MinLength:      d.MinLength,
		MaxLength:      d.MaxLength,
		Regex:          d.Regex,
		FileSize:       d.FileSize,
	}
	if d.MinValue != nil {
		row.MinValue = decimal.NewNullDecimal(*d.MinValue)
	}
	if d.MaxValue != nil {
		row.MaxValue = decimal.NewNullDecimal(*d.MaxValue)
	}
	if len(d.FileTypes) > 0 {
		row.FileTypes = make([]string, 0, len(d.FileTypes))
		for _, e := range d.FileTypes {
			row.FileTypes = append(row.FileTypes, string(e))
		}
	}
	return row
}

func (r *fieldRow) definition() *field.Definition {
	d := &field.Definition{
		ID:       r.ID,
		EntityID: r.EntityID,
		Label:    r.Label,
		Type:     fieldtype.Type(r.FieldType),
		Required: r.Required,
		Unique:   r.IsUnique,
		Visible:  r.Visible,
		Order:    r.FieldOrder,
		Seq:      r.Seq,
		Status:   fieldtype.Status(r.Status),
		Constraints: field.Constraints{
			Placeholder: r.Placeholder,
			MinLength:   r.MinLength,
			MaxLength:   r.MaxLength,
			Regex:       r.Regex,
			FileSize:    r.FileSize,
		},
	}
	if r.MinValue.Valid {
		v := r.MinValue.Decimal
		d.MinValue = &v
	}
	if r.MaxValue.Valid {
		v := r.MaxValue.Decimal
		d.MaxValue = &v
	}
	for _, e := range r.FileTypes {
		d.FileTypes = append(d.FileTypes, fieldtype.Extension(e))
	}
	return d
}

func (r *fieldRow) locks() field.Locks {
	return field.Locks{Required: r.RequiredLocked, Unique: r.UniqueLocked, Visible: r.VisibleLocked}
}

// FieldRepo stores definitions in custom_fields.
type FieldRepo struct {
	txm *postgres.TxManager
}

// NewFieldRepo creates a field repository.
func NewFieldRepo(txm *postgres.TxManager) *FieldRepo {
	return &FieldRepo{txm: txm}
}

func (r *FieldRepo) Create(ctx context.Context, d *field.Definition, locks field.Locks) error {
	row := toFieldRow(d, locks)
	sql, args, err := builder().
		Insert(postgres.TableFields).
		SetMap(postgres.StructToMap(&row, "seq")).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&d.Seq); err != nil {
		return postgres.MapError(err, "field")
	}
	return nil
}

func (r *FieldRepo) getRow(ctx context.Context, fieldID id.ID) (*fieldRow, error) {
	sql, args, err := builder().
		Select(fieldColumns...).
		From(postgres.TableFields).
		Where(squirrel.Eq{"id": fieldID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row fieldRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("field", fieldID.String())
		}
		return nil, postgres.MapError(err, "field")
	}
	return &row, nil
}

func (r *FieldRepo) GetByID(ctx context.Context, fieldID id.ID) (*field.Definition, error) {
	row, err := r.getRow(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return row.definition(), nil
}

func (r *FieldRepo) GetLocks(ctx context.Context, fieldID id.ID) (field.Locks, error) {
	row, err := r.getRow(ctx, fieldID)
	if err != nil {
		return field.Locks{}, err
	}
	return row.locks(), nil
}

func (r *FieldRepo) Update(ctx context.Context, d *field.Definition, locks field.Locks) error {
	row := toFieldRow(d, locks)
	all := postgres.StructToMap(&row)
	set := make(map[string]any, len(mutableFieldColumns))
	for _, col := range mutableFieldColumns {
		set[col] = all[col]
	}
	return r.exec(ctx, d.ID, builder().
		Update(postgres.TableFields).
		SetMap(set).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": d.ID}))
}

func (r *FieldRepo) SetStatus(ctx context.Context, fieldID id.ID, status fieldtype.Status) error {
	return r.exec(ctx, fieldID, setFieldColumn(fieldID, "status", string(status)))
}

func (r *FieldRepo) SetOrder(ctx context.Context, fieldID id.ID, order int) error {
	return r.exec(ctx, fieldID, setFieldColumn(fieldID, "field_order", order))
}

func setFieldColumn(fieldID id.ID, col string, v any) squirrel.UpdateBuilder {
	return builder().
		Update(postgres.TableFields).
		Set(col, v).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": fieldID})
}

func (r *FieldRepo) exec(ctx context.Context, fieldID id.ID, q squirrel.UpdateBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "field")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("field", fieldID.String())
	}
	return nil
}

func listFieldsQuery(entityID id.ID, includeInactive bool) squirrel.SelectBuilder {
	q := builder().
		Select(fieldColumns...).
		From(postgres.TableFields).
		Where(squirrel.Eq{"entity_id": entityID})
	if includeInactive {
		q = q.Where(squirrel.NotEq{"status": statusDeleted})
	} else {
		q = q.Where(squirrel.Eq{"status": statusActive})
	}
	return q.OrderBy("field_order", "seq")
}

func (r *FieldRepo) ListByEntity(ctx context.Context, entityID id.ID, includeInactive bool) ([]*field.Definition, error) {
	sql, args, err := listFieldsQuery(entityID, includeInactive).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*fieldRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "field")
	}
	out := make([]*field.Definition, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.definition())
	}
	return out, nil
}
