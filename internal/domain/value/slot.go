// Package value provides the typed container for submitted custom field
// values. A record holds exactly one storage slot, selected by field type.
package value

import (
	"bytes"
	"encoding/json"
	"time"

	"customfields/internal/domain/fieldtype"
)

// Slot is the sealed set of storage variants. Only the four types in this
// package implement it.
type Slot interface {
	Kind() fieldtype.StorageKind
	equal(other Slot) bool
}

// TextSlot stores scalar values (text, numbers, amounts) as their
// normalized string form.
type TextSlot struct {
	Text string
}

// JSONSlot stores structured payloads: selections, tags, files, locations.
// Doc is canonical compact JSON.
type JSONSlot struct {
	Doc json.RawMessage
}

// DateSlot stores a calendar date at UTC midnight.
type DateSlot struct {
	Date time.Time
}

// TimeSlot stores a wall-clock time without date or zone.
type TimeSlot struct {
	Time TimeOfDay
}

func (TextSlot) Kind() fieldtype.StorageKind { return fieldtype.StorageText }
func (JSONSlot) Kind() fieldtype.StorageKind { return fieldtype.StorageJSON }
func (DateSlot) Kind() fieldtype.StorageKind { return fieldtype.StorageDate }
func (TimeSlot) Kind() fieldtype.StorageKind { return fieldtype.StorageTime }

func (s TextSlot) equal(o Slot) bool {
	other, ok := o.(TextSlot)
	return ok && s.Text == other.Text
}

func (s JSONSlot) equal(o Slot) bool {
	other, ok := o.(JSONSlot)
	return ok && bytes.Equal(compact(s.Doc), compact(other.Doc))
}

func (s DateSlot) equal(o Slot) bool {
	other, ok := o.(DateSlot)
	return ok && s.Date.Equal(other.Date)
}

func (s TimeSlot) equal(o Slot) bool {
	other, ok := o.(TimeSlot)
	return ok && s.Time == other.Time
}

// NewDateSlot truncates t to its calendar date in UTC.
func NewDateSlot(t time.Time) DateSlot {
	y, m, d := t.Date()
	return DateSlot{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewJSONSlot encodes v as canonical JSON.
func NewJSONSlot(v any) (JSONSlot, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSONSlot{}, err
	}
	return JSONSlot{Doc: b}, nil
}

func compact(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}
