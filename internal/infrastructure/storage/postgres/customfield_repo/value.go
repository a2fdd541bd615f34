package customfield_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgtype"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/value"
	"customfields/internal/infrastructure/storage/postgres"
)

var _ value.Repository = (*ValueRepo)(nil)

// valueRow mirrors one custom_field_values row. Exactly one of the four
// slot columns is non-null.
type valueRow struct {
	ID        id.ID       `db:"id"`
	FieldID   id.ID       `db:"field_id"`
	OwnerID   id.ID       `db:"owner_id"`
	FieldType string      `db:"field_type"`
	TextValue *string     `db:"text_value"`
	JSONValue []byte      `db:"json_value"`
	DateValue pgtype.Date `db:"date_value"`
	TimeValue pgtype.Time `db:"time_value"`
	UniqueKey string      `db:"unique_key"`
	UpdatedBy string      `db:"updated_by"`
	UpdatedAt time.Time   `db:"updated_at"`
}

var valueColumns = postgres.ExtractDBColumns[valueRow]()

func toValueRow(rec *value.Record) (valueRow, error) {
	row := valueRow{
		ID:        rec.ID,
		FieldID:   rec.FieldID,
		OwnerID:   rec.OwnerID,
		FieldType: string(rec.FieldType),
		UniqueKey: rec.UniqueKey,
		UpdatedBy: rec.UpdatedBy,
		UpdatedAt: rec.UpdatedAt,
	}
	switch s := rec.Slot.(type) {
	case value.TextSlot:
		text := s.Text
		row.TextValue = &text
	case value.JSONSlot:
		row.JSONValue = []byte(s.Doc)
	case value.DateSlot:
		row.DateValue = pgtype.Date{Time: s.Date, Valid: true}
	case value.TimeSlot:
		row.TimeValue = pgtype.Time{Microseconds: s.Time.Microseconds(), Valid: true}
	default:
		return valueRow{}, fmt.Errorf("unsupported slot %T", rec.Slot)
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return row, nil
}

func (r *valueRow) record() (*value.Record, error) {
	var slot value.Slot
	switch {
	case r.TextValue != nil:
		slot = value.TextSlot{Text: *r.TextValue}
	case r.JSONValue != nil:
		slot = value.JSONSlot{Doc: r.JSONValue}
	case r.DateValue.Valid:
		slot = value.NewDateSlot(r.DateValue.Time)
	case r.TimeValue.Valid:
		slot = value.TimeSlot{Time: value.TimeOfDayFromMicroseconds(r.TimeValue.Microseconds)}
	}

	rec, err := value.New(r.FieldID, r.OwnerID, fieldtype.Type(r.FieldType), slot, r.UniqueKey)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("value %s: %w", r.ID, err))
	}
	rec.ID = r.ID
	rec.UpdatedBy = r.UpdatedBy
	rec.UpdatedAt = r.UpdatedAt
	return rec, nil
}

// ValueRepo stores value records in custom_field_values.
type ValueRepo struct {
	txm *postgres.TxManager
}

// NewValueRepo creates a value repository.
func NewValueRepo(txm *postgres.TxManager) *ValueRepo {
	return &ValueRepo{txm: txm}
}

func (r *ValueRepo) Get(ctx context.Context, fieldID, ownerID id.ID) (*value.Record, error) {
	sql, args, err := builder().
		Select(valueColumns...).
		From(postgres.TableValues).
		Where(squirrel.Eq{"field_id": fieldID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row valueRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("value", fieldID.String())
		}
		return nil, postgres.MapError(err, "value")
	}
	return row.record()
}

func (r *ValueRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]*value.Record, error) {
	sql, args, err := builder().
		Select(valueColumns...).
		From(postgres.TableValues).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*valueRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "value")
	}
	out := make([]*value.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

const upsertValueSuffix = `ON CONFLICT (field_id, owner_id) DO UPDATE SET
	field_type = EXCLUDED.field_type,
	text_value = EXCLUDED.text_value,
	json_value = EXCLUDED.json_value,
	date_value = EXCLUDED.date_value,
	time_value = EXCLUDED.time_value,
	unique_key = EXCLUDED.unique_key,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING id`

func putValueQuery(row *valueRow) squirrel.InsertBuilder {
	return builder().
		Insert(postgres.TableValues).
		SetMap(postgres.StructToMap(row)).
		Suffix(upsertValueSuffix)
}

// Put inserts the record or replaces the one held for the same field and
// owner. The stored id of a replaced record is kept.
func (r *ValueRepo) Put(ctx context.Context, rec *value.Record) error {
	row, err := toValueRow(rec)
	if err != nil {
		return apperror.NewInternal(err)
	}
	sql, args, err := putValueQuery(&row).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&rec.ID); err != nil {
		return postgres.MapError(err, "value")
	}
	return nil
}

func (r *ValueRepo) Delete(ctx context.Context, fieldID, ownerID id.ID) error {
	sql, args, err := builder().
		Delete(postgres.TableValues).
		Where(squirrel.Eq{"field_id": fieldID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "value")
	}
	return nil
}

func existsEqualQuery(q value.UniqueQuery) squirrel.SelectBuilder {
	sel := builder().
		Select("1").
		From(postgres.TableValues + " v").
		Join(postgres.TableFields + " f ON f.id = v.field_id").
		Where(squirrel.Eq{"v.unique_key": q.Key}).
		Where(squirrel.NotEq{"f.status": statusDeleted})

	switch q.Scope {
	case value.ScopeEntity:
		sel = sel.
			Where(squirrel.Eq{"f.entity_id": q.EntityID}).
			Where(squirrel.Eq{"f.field_type": string(q.FieldType)}).
			Where(squirrel.Expr("NOT (v.field_id = ? AND v.owner_id = ?)", q.FieldID, q.OwnerID))
	default:
		sel = sel.
			Where(squirrel.Eq{"v.field_id": q.FieldID}).
			Where(squirrel.NotEq{"v.owner_id": q.OwnerID})
	}
	return sel.Prefix("SELECT EXISTS (").Suffix(")")
}

func (r *ValueRepo) ExistsEqual(ctx context.Context, q value.UniqueQuery) (bool, error) {
	sql, args, err := existsEqualQuery(q).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "value")
	}
	return exists, nil
}
