// Package fieldtype defines the closed taxonomy of custom field kinds and
// the capability table each kind carries.
//
// The table is built once at package initialisation and never mutated, so it
// is shared across concurrent requests without synchronisation.
package fieldtype

import (
	"fmt"
	"strings"
)

// Type is the tag of a custom field kind.
type Type string

const (
	Text         Type = "text"
	Number       Type = "number"
	Email        Type = "email"
	Phone        Type = "phone"
	Amount       Type = "amount"
	Textarea     Type = "textarea"
	SingleSelect Type = "single_select"
	MultiSelect  Type = "multi_select"
	Tag          Type = "tag"
	Radio        Type = "radio"
	Checkbox     Type = "checkbox"
	Date         Type = "date"
	Time         Type = "time"
	File         Type = "file"
	Image        Type = "image"
	MultiFile    Type = "multi_file"
	MultiImage   Type = "multi_image"
	Location     Type = "location"
)

// All lists every field type in declaration order.
var All = []Type{
	Text, Number, Email, Phone, Amount, Textarea,
	SingleSelect, MultiSelect, Tag, Radio, Checkbox,
	Date, Time,
	File, Image, MultiFile, MultiImage,
	Location,
}

// Parse converts an external tag into a Type. Hyphenated spellings
// ("single-select") are accepted as aliases of the underscore form.
func Parse(s string) (Type, error) {
	t := Type(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := table[t]; !ok {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the declared field types.
func (t Type) Valid() bool {
	_, ok := table[t]
	return ok
}

// String returns the tag.
func (t Type) String() string {
	return string(t)
}

// UnmarshalText parses a tag, rejecting unknown ones.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText returns the tag.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t), nil
}
