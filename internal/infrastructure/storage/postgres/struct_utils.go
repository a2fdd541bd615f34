package postgres

import (
	"reflect"
	"sync"
)

// columnsCache holds the db tag list per struct type.
var columnsCache sync.Map // map[reflect.Type][]column

type column struct {
	index []int
	name  string
}

func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnsCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				for _, c := range columnsOf(f.Type) {
					cols = append(cols, column{index: append([]int{i}, c.index...), name: c.name})
				}
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, column{index: []int{i}, name: tag})
		}
	}

	columnsCache.Store(t, cols)
	return cols
}

// ExtractDBColumns lists the "db" tags of T, embedded structs flattened,
// in declaration order.
func ExtractDBColumns[T any]() []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.name)
	}
	return out
}

// StructToMap converts a struct into column/value pairs using "db" tags.
// Columns named in omit are left out.
func StructToMap(v any, omit ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	skip := make(map[string]struct{}, len(omit))
	for _, o := range omit {
		skip[o] = struct{}{}
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		if _, ok := skip[c.name]; ok {
			continue
		}
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}
