// Package option provides the option sets of selection-style fields.
package option

import (
	"context"
	"strings"
	"unicode/utf8"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Option is one named choice of a selection field.
type Option struct {
	ID      id.ID  `db:"id" json:"id"`
	FieldID id.ID  `db:"field_id" json:"field_id"`
	Text    string `db:"text" json:"text"`

	// Position orders options within a field; ties fall back to Seq.
	Position int   `db:"position" json:"position"`
	Seq      int64 `db:"seq" json:"-"`

	Status fieldtype.Status `db:"status" json:"status"`
}

// IsActive reports whether the option can be selected in new submissions.
func (o *Option) IsActive() bool {
	return o.Status == fieldtype.StatusActive
}

// Validate implements option invariants.
func (o *Option) Validate(ctx context.Context) error {
	if strings.TrimSpace(o.Text) == "" {
		return apperror.NewValidation("option text is required").
			WithDetail("field", "text")
	}
	if utf8.RuneCountInString(o.Text) > 255 {
		return apperror.NewValidation("option text is too long").
			WithDetail("field", "text")
	}
	return nil
}

// ActiveIDs returns the identities of active options.
func ActiveIDs(opts []*Option) map[id.ID]struct{} {
	out := make(map[id.ID]struct{}, len(opts))
	for _, o := range opts {
		if o.IsActive() {
			out[o.ID] = struct{}{}
		}
	}
	return out
}
