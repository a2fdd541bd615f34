// Package field provides custom field definitions: the declared shape of one
// field, its lifecycle and the client-facing write/read projections.
package field

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Constraints holds the type-conditional constraint columns. Which of them
// apply is decided by fieldtype.Capabilities; the rest are stored but ignored.
type Constraints struct {
	Placeholder *string `db:"placeholder" json:"placeholder,omitempty"`

	// Text-like types. Bounds are inclusive and counted in code points.
	MinLength *int    `db:"min_length" json:"min_length,omitempty"`
	MaxLength *int    `db:"max_length" json:"max_length,omitempty"`
	Regex     *string `db:"regex" json:"regex,omitempty"`

	// Numeric and amount types. Bounds are inclusive.
	MinValue *decimal.Decimal `db:"min_value" json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `db:"max_value" json:"max_value,omitempty"`

	// File and image types. FileSize is the maximum size in bytes.
	FileSize  *int64                `db:"file_size" json:"file_size,omitempty"`
	FileTypes []fieldtype.Extension `db:"file_types" json:"file_types,omitempty"`
}

// Definition is the canonical stored field definition.
type Definition struct {
	ID       id.ID          `db:"id" json:"id"`
	EntityID id.ID          `db:"entity_id" json:"entity_id"`
	Label    string         `db:"label" json:"label"`
	Type     fieldtype.Type `db:"field_type" json:"field_type"`

	Required bool `db:"required" json:"required"`
	Unique   bool `db:"is_unique" json:"unique"`
	Visible  bool `db:"visible" json:"visible"`

	// Order is the display position. Values need not be contiguous or
	// distinct; ties fall back to Seq.
	Order int `db:"field_order" json:"field_order"`

	// Seq is the insertion sequence assigned by the store.
	Seq int64 `db:"seq" json:"-"`

	Status fieldtype.Status `db:"status" json:"status"`

	Constraints
}

// Locks records which boolean attributes a client may no longer change.
// It belongs to the create/update boundary and is kept out of Definition.
type Locks struct {
	Required bool `db:"required_locked"`
	Unique   bool `db:"unique_locked"`
	Visible  bool `db:"visible_locked"`
}

// Capabilities returns the capability set of the definition's type.
func (d *Definition) Capabilities() fieldtype.Capabilities {
	return fieldtype.CapabilitiesOf(d.Type)
}

// IsDeleted reports whether the definition is soft-deleted.
func (d *Definition) IsDeleted() bool {
	return d.Status == fieldtype.StatusDeleted
}

// Pattern compiles the regex constraint anchored to the whole string.
// Returns nil when the type has no pattern constraint or none is set.
func (d *Definition) Pattern() (*regexp.Regexp, error) {
	if !d.Capabilities().Constraints.Has(fieldtype.ConstraintPattern) {
		return nil, nil
	}
	if d.Regex == nil || *d.Regex == "" {
		return nil, nil
	}
	return regexp.Compile(`^(?:` + *d.Regex + `)$`)
}

// AllowedExtensions returns the extension allow-list for file types, or nil
// when any supported extension is accepted.
func (d *Definition) AllowedExtensions() []fieldtype.Extension {
	caps := d.Capabilities()
	if !caps.Files {
		return nil
	}
	if len(d.FileTypes) > 0 {
		return d.FileTypes
	}
	if caps.ImagesOnly {
		return fieldtype.ImageExtensions()
	}
	return nil
}

// Validate checks definition invariants without store access.
func (d *Definition) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.Label) == "" {
		return apperror.NewValidation("label is required").
			WithDetail("field", "label")
	}
	if utf8.RuneCountInString(d.Label) > 255 {
		return apperror.NewValidation("label is too long").
			WithDetail("field", "label")
	}
	if !d.Type.Valid() {
		return apperror.NewValidation("invalid field type").
			WithDetail("field", "field_type").
			WithDetail("value", string(d.Type))
	}
	if id.IsNil(d.EntityID) {
		return apperror.NewValidation("owning entity is required").
			WithDetail("field", "entity_id")
	}

	c := d.Constraints
	if c.MinLength != nil && *c.MinLength < 0 {
		return apperror.NewValidation("min_length must not be negative").WithDetail("field", "min_length")
	}
	if c.MaxLength != nil && *c.MaxLength < 0 {
		return apperror.NewValidation("max_length must not be negative").WithDetail("field", "max_length")
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		return apperror.NewValidation("min_length exceeds max_length").
			WithDetail("field", "min_length").
			WithDetail("min_length", *c.MinLength).
			WithDetail("max_length", *c.MaxLength)
	}
	if c.MinValue != nil && c.MaxValue != nil && c.MinValue.GreaterThan(*c.MaxValue) {
		return apperror.NewValidation("min_value exceeds max_value").
			WithDetail("field", "min_value").
			WithDetail("min_value", c.MinValue.String()).
			WithDetail("max_value", c.MaxValue.String())
	}
	if c.FileSize != nil && *c.FileSize <= 0 {
		return apperror.NewValidation("file_size must be positive").WithDetail("field", "file_size")
	}
	if c.Regex != nil && *c.Regex != "" {
		if _, err := regexp.Compile(*c.Regex); err != nil {
			return apperror.NewValidation("regex does not compile").
				WithDetail("field", "regex").
				WithDetail("error", err.Error())
		}
	}
	if d.Capabilities().ImagesOnly {
		for _, ext := range c.FileTypes {
			if !ext.IsImage() {
				return apperror.NewValidation("image fields accept image extensions only").
					WithDetail("field", "file_types").
					WithDetail("value", string(ext))
			}
		}
	}

	return nil
}
