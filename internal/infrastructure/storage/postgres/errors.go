package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"customfields/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes the store maps onto domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
)

// MapError converts driver errors into application errors. Constraint
// errors become recoverable per-item errors; everything else, including
// connection failures, is a transport error.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
		case codeForeignKeyViolation:
			return apperror.NewReference(entity, pgErr.ConstraintName).WithCause(err)
		case codeCheckViolation:
			return apperror.NewState(pgErr.Message).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case codeSerialization:
			return apperror.NewConflict("concurrent update, retry the request").WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return apperror.NewTransport(err)
}
