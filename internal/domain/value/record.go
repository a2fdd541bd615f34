package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"customfields/internal/core/id"
	"customfields/internal/domain/fieldtype"
)

// Record is the value one owning entity holds for one field.
type Record struct {
	ID      id.ID
	FieldID id.ID
	OwnerID id.ID

	// FieldType is fixed at creation; the slot kind always matches it.
	FieldType fieldtype.Type

	Slot Slot

	// UniqueKey is the normalized comparison form used by uniqueness checks.
	UniqueKey string

	UpdatedBy string
	UpdatedAt time.Time
}

// New builds a record, rejecting a slot whose kind differs from the storage
// kind of the field type.
func New(fieldID, ownerID id.ID, ft fieldtype.Type, slot Slot, uniqueKey string) (*Record, error) {
	if slot == nil {
		return nil, fmt.Errorf("value for %s has no slot", ft)
	}
	want := fieldtype.CapabilitiesOf(ft).Storage
	if slot.Kind() != want {
		return nil, fmt.Errorf("field type %s stores %s, got %s slot", ft, want, slot.Kind())
	}
	return &Record{
		ID:        id.New(),
		FieldID:   fieldID,
		OwnerID:   ownerID,
		FieldType: ft,
		Slot:      slot,
		UniqueKey: uniqueKey,
	}, nil
}

// SameValue reports whether two records hold equal slots.
func (r *Record) SameValue(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Slot.equal(other.Slot)
}

// Value returns the caller-facing normalized value. Feeding it back into
// validation reproduces the same record.
func (r *Record) Value() any {
	switch s := r.Slot.(type) {
	case TextSlot:
		return s.Text
	case DateSlot:
		return s.Date.Format(DateLayout)
	case TimeSlot:
		return s.Time.String()
	case JSONSlot:
		dec := json.NewDecoder(bytes.NewReader(s.Doc))
		dec.UseNumber()
		var out any
		if err := dec.Decode(&out); err != nil {
			return nil
		}
		return out
	}
	return nil
}

// Files decodes the file references of a file-type record.
func (r *Record) Files() []FileRef {
	if r == nil || !fieldtype.CapabilitiesOf(r.FieldType).Files {
		return nil
	}
	s, ok := r.Slot.(JSONSlot)
	if !ok {
		return nil
	}
	if fieldtype.CapabilitiesOf(r.FieldType).MultiValued {
		var refs []FileRef
		if err := json.Unmarshal(s.Doc, &refs); err != nil {
			return nil
		}
		return refs
	}
	var ref FileRef
	if err := json.Unmarshal(s.Doc, &ref); err != nil || ref.Ref == "" {
		return nil
	}
	return []FileRef{ref}
}

// FileRefs lists the stored file identifiers referenced by the record.
func (r *Record) FileRefs() []string {
	files := r.Files()
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Ref)
	}
	return out
}
