// Package customfield_repo provides the PostgreSQL repositories of field
// definitions, options and values. Repositories pick up the transaction
// from the context through the shared TxManager.
package customfield_repo

import (
	"github.com/Masterminds/squirrel"

	"customfields/internal/domain/fieldtype"
)

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var (
	statusActive  = string(fieldtype.StatusActive)
	statusDeleted = string(fieldtype.StatusDeleted)
)
