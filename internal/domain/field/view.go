package field

import (
	"github.com/shopspring/decimal"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// LockedBool is a boolean attribute paired with its lock flag on the
// create/update boundary.
type LockedBool struct {
	Value  bool `json:"value"`
	Locked bool `json:"locked"`
}

// WriteView is the create/update payload.
type WriteView struct {
	Label      string         `json:"label" binding:"required"`
	FieldType  fieldtype.Type `json:"field_type" binding:"required"`
	Required   LockedBool     `json:"required"`
	Unique     LockedBool     `json:"unique"`
	Visible    LockedBool     `json:"visible"`
	FieldOrder int            `json:"field_order"`

	Placeholder *string               `json:"placeholder,omitempty"`
	MinLength   *int                  `json:"min_length,omitempty"`
	MaxLength   *int                  `json:"max_length,omitempty"`
	Regex       *string               `json:"regex,omitempty"`
	MinValue    *decimal.Decimal      `json:"min_value,omitempty"`
	MaxValue    *decimal.Decimal      `json:"max_value,omitempty"`
	FileSize    *ByteSize             `json:"file_size,omitempty"`
	FileTypes   []fieldtype.Extension `json:"file_types,omitempty"`

	// Options are the initial option texts of a selection field. They are
	// honoured on create only; later edits go through the option service.
	Options []string `json:"options,omitempty"`
}

// ReadView is the read/display shape with flat booleans.
type ReadView struct {
	ID         id.ID            `json:"id"`
	EntityID   id.ID            `json:"entity_id"`
	Label      string           `json:"label"`
	FieldType  fieldtype.Type   `json:"field_type"`
	Required   bool             `json:"required"`
	Unique     bool             `json:"unique"`
	Visible    bool             `json:"visible"`
	FieldOrder int              `json:"field_order"`
	Status     fieldtype.Status `json:"status"`

	Placeholder *string               `json:"placeholder,omitempty"`
	MinLength   *int                  `json:"min_length,omitempty"`
	MaxLength   *int                  `json:"max_length,omitempty"`
	Regex       *string               `json:"regex,omitempty"`
	MinValue    *decimal.Decimal      `json:"min_value,omitempty"`
	MaxValue    *decimal.Decimal      `json:"max_value,omitempty"`
	FileSize    *int64                `json:"file_size,omitempty"`
	FileTypes   []fieldtype.Extension `json:"file_types,omitempty"`
}

// ToReadView projects a definition onto the display shape.
func ToReadView(d *Definition) ReadView {
	return ReadView{
		ID:          d.ID,
		EntityID:    d.EntityID,
		Label:       d.Label,
		FieldType:   d.Type,
		Required:    d.Required,
		Unique:      d.Unique,
		Visible:     d.Visible,
		FieldOrder:  d.Order,
		Status:      d.Status,
		Placeholder: d.Placeholder,
		MinLength:   d.MinLength,
		MaxLength:   d.MaxLength,
		Regex:       d.Regex,
		MinValue:    d.MinValue,
		MaxValue:    d.MaxValue,
		FileSize:    d.FileSize,
		FileTypes:   d.FileTypes,
	}
}

// ToWriteView projects a definition and its locks onto the create/update shape.
func ToWriteView(d *Definition, locks Locks) WriteView {
	v := WriteView{
		Label:       d.Label,
		FieldType:   d.Type,
		Required:    LockedBool{Value: d.Required, Locked: locks.Required},
		Unique:      LockedBool{Value: d.Unique, Locked: locks.Unique},
		Visible:     LockedBool{Value: d.Visible, Locked: locks.Visible},
		FieldOrder:  d.Order,
		Placeholder: d.Placeholder,
		MinLength:   d.MinLength,
		MaxLength:   d.MaxLength,
		Regex:       d.Regex,
		MinValue:    d.MinValue,
		MaxValue:    d.MaxValue,
		FileTypes:   d.FileTypes,
	}
	if d.FileSize != nil {
		size := ByteSize(*d.FileSize)
		v.FileSize = &size
	}
	return v
}

// FromWriteView splits a write payload into the canonical definition
// (without identity or status) and its lock set.
func FromWriteView(v WriteView) (Definition, Locks) {
	d := Definition{
		Label:    v.Label,
		Type:     v.FieldType,
		Required: v.Required.Value,
		Unique:   v.Unique.Value,
		Visible:  v.Visible.Value,
		Order:    v.FieldOrder,
		Constraints: Constraints{
			Placeholder: v.Placeholder,
			MinLength:   v.MinLength,
			MaxLength:   v.MaxLength,
			Regex:       v.Regex,
			MinValue:    v.MinValue,
			MaxValue:    v.MaxValue,
			FileTypes:   v.FileTypes,
		},
	}
	if v.FileSize != nil {
		size := int64(*v.FileSize)
		d.FileSize = &size
	}
	locks := Locks{
		Required: v.Required.Locked,
		Unique:   v.Unique.Locked,
		Visible:  v.Visible.Locked,
	}
	return d, locks
}
