package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/value"
)

// coerced is the normalized form of a raw value before slot routing.
type coerced struct {
	empty    bool
	text     string
	number   decimal.Decimal
	list     []string
	date     time.Time
	clock    value.TimeOfDay
	files    []value.FileRef
	location value.Location
}

// mismatch is returned by coercion when the raw shape cannot be converted.
type mismatch struct {
	message string
}

func typeMismatch(format string, args ...any) *mismatch {
	return &mismatch{message: fmt.Sprintf(format, args...)}
}

// coerce performs the type-class check: it converts raw into the normalized
// representation for ft or reports why no conversion is possible.
func coerce(ft fieldtype.Type, raw any, prior *value.Record) (coerced, *mismatch) {
	if raw == nil {
		return coerced{empty: true}, nil
	}

	switch ft {
	case fieldtype.Text, fieldtype.Textarea:
		s, ok := scalarString(raw)
		if !ok {
			return coerced{}, typeMismatch("expected a string, got %T", raw)
		}
		s = strings.TrimSpace(s)
		return coerced{text: s, empty: s == ""}, nil

	case fieldtype.Email:
		s, ok := raw.(string)
		if !ok {
			return coerced{}, typeMismatch("expected an email address string, got %T", raw)
		}
		s = strings.ToLower(strings.TrimSpace(s))
		return coerced{text: s, empty: s == ""}, nil

	case fieldtype.Phone:
		s, ok := scalarString(raw)
		if !ok {
			return coerced{}, typeMismatch("expected a phone number, got %T", raw)
		}
		s = normalizePhone(s)
		return coerced{text: s, empty: s == ""}, nil

	case fieldtype.Number, fieldtype.Amount:
		return coerceNumber(raw)

	case fieldtype.SingleSelect, fieldtype.Radio:
		return coerceSingleChoice(raw)

	case fieldtype.MultiSelect, fieldtype.Checkbox, fieldtype.Tag:
		items, m := stringList(raw)
		if m != nil {
			return coerced{}, m
		}
		return coerced{list: items, empty: len(items) == 0}, nil

	case fieldtype.Date:
		return coerceDate(raw)

	case fieldtype.Time:
		return coerceTime(raw)

	case fieldtype.File, fieldtype.Image, fieldtype.MultiFile, fieldtype.MultiImage:
		return coerceFiles(ft, raw, prior)

	case fieldtype.Location:
		return coerceLocation(raw)
	}

	return coerced{}, typeMismatch("unsupported field type %q", ft)
}

func scalarString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

func normalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func coerceNumber(raw any) (coerced, *mismatch) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return coerced{empty: true}, nil
		}
		d, err = decimal.NewFromString(s)
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return coerced{}, typeMismatch("number is not finite")
		}
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case decimal.Decimal:
		d = v
	default:
		return coerced{}, typeMismatch("expected a number, got %T", raw)
	}
	if err != nil {
		return coerced{}, typeMismatch("%v is not a number", raw)
	}
	return coerced{number: d}, nil
}

func coerceSingleChoice(raw any) (coerced, *mismatch) {
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return coerced{empty: true}, nil
		}
		return coerced{list: []string{strings.ToLower(s)}}, nil
	}
	items, m := stringList(raw)
	if m != nil {
		return coerced{}, m
	}
	if len(items) > 1 {
		return coerced{}, typeMismatch("field accepts a single option, got %d", len(items))
	}
	return coerced{list: lower(items), empty: len(items) == 0}, nil
}

// stringList accepts []string or []any of strings, trims items, drops
// empty ones and duplicates while keeping first-seen order.
func stringList(raw any) ([]string, *mismatch) {
	var in []string
	switch v := raw.(type) {
	case []string:
		in = v
	case []any:
		in = make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, typeMismatch("item %d: expected a string, got %T", i, item)
			}
			in = append(in, s)
		}
	default:
		return nil, typeMismatch("expected a list, got %T", raw)
	}

	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func lower(items []string) []string {
	for i, s := range items {
		items[i] = strings.ToLower(s)
	}
	return items
}

func coerceDate(raw any) (coerced, *mismatch) {
	switch v := raw.(type) {
	case time.Time:
		return coerced{date: value.NewDateSlot(v).Date}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return coerced{empty: true}, nil
		}
		if t, err := time.Parse(value.DateLayout, s); err == nil {
			return coerced{date: t}, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return coerced{date: value.NewDateSlot(t).Date}, nil
		}
		return coerced{}, typeMismatch("%q is not an ISO-8601 date", s)
	}
	return coerced{}, typeMismatch("expected an ISO-8601 date string, got %T", raw)
}

func coerceTime(raw any) (coerced, *mismatch) {
	switch v := raw.(type) {
	case value.TimeOfDay:
		return coerced{clock: v}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return coerced{empty: true}, nil
		}
		t, err := value.ParseTimeOfDay(s)
		if err != nil {
			return coerced{}, typeMismatch("%q is not an ISO-8601 time", s)
		}
		return coerced{clock: t}, nil
	}
	return coerced{}, typeMismatch("expected an ISO-8601 time string, got %T", raw)
}

func coerceFiles(ft fieldtype.Type, raw any, prior *value.Record) (coerced, *mismatch) {
	known := make(map[string]value.FileRef)
	for _, f := range prior.Files() {
		known[f.Ref] = f
	}

	var items []any
	if fieldtype.CapabilitiesOf(ft).MultiValued {
		switch v := raw.(type) {
		case []any:
			items = v
		case []value.FileRef:
			for _, f := range v {
				items = append(items, f)
			}
		default:
			return coerced{}, typeMismatch("expected a list of files, got %T", raw)
		}
	} else {
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			return coerced{empty: true}, nil
		}
		items = []any{raw}
	}

	files := make([]value.FileRef, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		f, m := fileRef(item, known)
		if m != nil {
			return coerced{}, typeMismatch("file %d: %s", i, m.message)
		}
		if _, dup := seen[f.Ref]; dup {
			continue
		}
		seen[f.Ref] = struct{}{}
		files = append(files, f)
	}
	return coerced{files: files, empty: len(files) == 0}, nil
}

// fileRef decodes one file reference. A bare ref string is accepted only
// when it names a file already stored on the prior value, whose metadata is
// then reused.
func fileRef(item any, known map[string]value.FileRef) (value.FileRef, *mismatch) {
	switch v := item.(type) {
	case value.FileRef:
		if v.Ref == "" {
			return value.FileRef{}, typeMismatch("missing ref")
		}
		return v, nil
	case string:
		if f, ok := known[strings.TrimSpace(v)]; ok {
			return f, nil
		}
		return value.FileRef{}, typeMismatch("unknown file ref %q needs name and size", v)
	case map[string]any:
		ref, _ := v["ref"].(string)
		name, _ := v["name"].(string)
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return value.FileRef{}, typeMismatch("missing ref")
		}
		if name == "" {
			if f, ok := known[ref]; ok {
				return f, nil
			}
			return value.FileRef{}, typeMismatch("missing name")
		}
		size, ok := intOf(v["size"])
		if !ok || size < 0 {
			return value.FileRef{}, typeMismatch("size must be a non-negative integer")
		}
		return value.FileRef{Ref: ref, Name: strings.TrimSpace(name), Size: size}, nil
	}
	return value.FileRef{}, typeMismatch("expected a file object, got %T", item)
}

func intOf(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func floatOf(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func coerceLocation(raw any) (coerced, *mismatch) {
	var loc value.Location
	switch v := raw.(type) {
	case value.Location:
		loc = v
	case map[string]any:
		if len(v) == 0 {
			return coerced{empty: true}, nil
		}
		lat, okLat := floatOf(v["lat"])
		lng, okLng := floatOf(v["lng"])
		if !okLat || !okLng {
			return coerced{}, typeMismatch("location needs numeric lat and lng")
		}
		loc = value.Location{Lat: lat, Lng: lng}
		if addr, ok := v["address"].(string); ok {
			loc.Address = strings.TrimSpace(addr)
		} else if v["address"] != nil {
			return coerced{}, typeMismatch("address must be a string")
		}
	default:
		return coerced{}, typeMismatch("expected a location object, got %T", raw)
	}
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return coerced{}, typeMismatch("coordinates out of range")
	}
	return coerced{location: loc}, nil
}
