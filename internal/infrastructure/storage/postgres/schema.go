package postgres

import (
	"context"
	"fmt"

	"customfields/pkg/logger"
)

// Table names.
const (
	TableFields  = "custom_fields"
	TableOptions = "custom_field_options"
	TableValues  = "custom_field_values"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS custom_fields (
		id              UUID PRIMARY KEY,
		seq             BIGSERIAL NOT NULL UNIQUE,
		entity_id       UUID NOT NULL,
		label           VARCHAR(255) NOT NULL,
		field_type      VARCHAR(32) NOT NULL,
		required        BOOLEAN NOT NULL DEFAULT FALSE,
		required_locked BOOLEAN NOT NULL DEFAULT FALSE,
		is_unique       BOOLEAN NOT NULL DEFAULT FALSE,
		unique_locked   BOOLEAN NOT NULL DEFAULT FALSE,
		visible         BOOLEAN NOT NULL DEFAULT TRUE,
		visible_locked  BOOLEAN NOT NULL DEFAULT FALSE,
		field_order     INTEGER NOT NULL DEFAULT 0,
		status          VARCHAR(16) NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'inactive', 'deleted')),
		placeholder     TEXT,
		min_length      INTEGER CHECK (min_length >= 0),
		max_length      INTEGER CHECK (max_length >= 0),
		regex           TEXT,
		min_value       NUMERIC,
		max_value       NUMERIC,
		file_size       BIGINT CHECK (file_size > 0),
		file_types      TEXT[],
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_fields_entity
		ON custom_fields (entity_id, field_order, seq)
		WHERE status <> 'deleted'`,

	`CREATE TABLE IF NOT EXISTS custom_field_options (
		id         UUID PRIMARY KEY,
		seq        BIGSERIAL NOT NULL UNIQUE,
		field_id   UUID NOT NULL REFERENCES custom_fields (id),
		text       VARCHAR(255) NOT NULL,
		position   INTEGER NOT NULL DEFAULT 0,
		status     VARCHAR(16) NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'inactive', 'deleted')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_field_options_field
		ON custom_field_options (field_id, position, seq)`,

	`CREATE TABLE IF NOT EXISTS custom_field_values (
		id          UUID PRIMARY KEY,
		field_id    UUID NOT NULL REFERENCES custom_fields (id),
		owner_id    UUID NOT NULL,
		field_type  VARCHAR(32) NOT NULL,
		text_value  TEXT,
		json_value  JSONB,
		date_value  DATE,
		time_value  TIME,
		unique_key  TEXT NOT NULL,
		updated_by  TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT custom_field_values_one_slot
			CHECK (num_nonnulls(text_value, json_value, date_value, time_value) = 1),
		CONSTRAINT custom_field_values_field_owner UNIQUE (field_id, owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_field_values_key
		ON custom_field_values (field_id, unique_key)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_field_values_owner
		ON custom_field_values (owner_id)`,
}

// Migrate applies the schema inside one transaction.
func Migrate(ctx context.Context, txm *TxManager) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)
		for i, stmt := range schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		logger.Info(ctx, "schema applied", "statements", len(schema))
		return nil
	})
}
