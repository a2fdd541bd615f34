package customfield_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/option"
	"customfields/internal/infrastructure/storage/postgres"
)

var _ option.Repository = (*OptionRepo)(nil)

var optionColumns = postgres.ExtractDBColumns[option.Option]()

// OptionRepo stores options in custom_field_options.
type OptionRepo struct {
	txm *postgres.TxManager
}

// NewOptionRepo creates an option repository.
func NewOptionRepo(txm *postgres.TxManager) *OptionRepo {
	return &OptionRepo{txm: txm}
}

func (r *OptionRepo) Create(ctx context.Context, o *option.Option) error {
	sql, args, err := builder().
		Insert(postgres.TableOptions).
		Columns("id", "field_id", "text", "position", "status").
		Values(o.ID, o.FieldID, o.Text, o.Position, string(o.Status)).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&o.Seq); err != nil {
		return postgres.MapError(err, "option")
	}
	return nil
}

func (r *OptionRepo) GetByID(ctx context.Context, optionID id.ID) (*option.Option, error) {
	sql, args, err := builder().
		Select(optionColumns...).
		From(postgres.TableOptions).
		Where(squirrel.Eq{"id": optionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o option.Option
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("option", optionID.String())
		}
		return nil, postgres.MapError(err, "option")
	}
	return &o, nil
}

func (r *OptionRepo) UpdateText(ctx context.Context, optionID id.ID, text string) error {
	return r.set(ctx, optionID, "text", text)
}

func (r *OptionRepo) SetStatus(ctx context.Context, optionID id.ID, status fieldtype.Status) error {
	return r.set(ctx, optionID, "status", string(status))
}

func (r *OptionRepo) set(ctx context.Context, optionID id.ID, col string, v any) error {
	sql, args, err := builder().
		Update(postgres.TableOptions).
		Set(col, v).
		Where(squirrel.Eq{"id": optionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "option")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("option", optionID.String())
	}
	return nil
}

func listOptionsQuery(fieldID id.ID, includeDeleted bool) squirrel.SelectBuilder {
	q := builder().
		Select(optionColumns...).
		From(postgres.TableOptions).
		Where(squirrel.Eq{"field_id": fieldID})
	if !includeDeleted {
		q = q.Where(squirrel.NotEq{"status": statusDeleted})
	}
	return q.OrderBy("position", "seq")
}

func (r *OptionRepo) ListByField(ctx context.Context, fieldID id.ID, includeDeleted bool) ([]*option.Option, error) {
	sql, args, err := listOptionsQuery(fieldID, includeDeleted).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*option.Option
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "option")
	}
	return out, nil
}

func entityOptionsQuery(entityID id.ID) squirrel.SelectBuilder {
	cols := make([]string, 0, len(optionColumns))
	for _, c := range optionColumns {
		cols = append(cols, "o."+c)
	}
	return builder().
		Select(cols...).
		From(postgres.TableOptions + " o").
		Join(postgres.TableFields + " f ON f.id = o.field_id").
		Where(squirrel.Eq{"f.entity_id": entityID}).
		Where(squirrel.NotEq{"f.status": statusDeleted}).
		Where(squirrel.Eq{"o.status": statusActive}).
		OrderBy("o.field_id", "o.position", "o.seq")
}

// ListByEntity loads every active option of the entity's fields in one query.
func (r *OptionRepo) ListByEntity(ctx context.Context, entityID id.ID) (map[id.ID][]*option.Option, error) {
	sql, args, err := entityOptionsQuery(entityID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []*option.Option
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "option")
	}
	out := make(map[id.ID][]*option.Option)
	for _, o := range rows {
		out[o.FieldID] = append(out[o.FieldID], o)
	}
	return out, nil
}
