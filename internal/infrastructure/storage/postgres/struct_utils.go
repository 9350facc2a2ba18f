package postgres

import (
	"reflect"
	"sync"
)

// Columns lists the "db" tags of T's fields in declaration order, descending
// into embedded structs.
func Columns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// fieldIndex maps a column to the index path of its struct field.
type fieldIndex map[string][]int

var indexCache sync.Map // map[reflect.Type]fieldIndex

func indexOf(t reflect.Type) fieldIndex {
	if cached, ok := indexCache.Load(t); ok {
		return cached.(fieldIndex)
	}

	idx := fieldIndex{}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			path := append(append([]int(nil), prefix...), i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walk(field.Type, path)
				continue
			}
			if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
				idx[tag] = path
			}
		}
	}
	walk(t, nil)

	indexCache.Store(t, idx)
	return idx
}

// RowValues returns v's field values for cols, in the order of cols.
// Unknown columns yield nil.
func RowValues(v any, cols []string) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	idx := indexOf(rv.Type())
	out := make([]any, len(cols))
	for i, col := range cols {
		if path, ok := idx[col]; ok {
			out[i] = rv.FieldByIndex(path).Interface()
		}
	}
	return out
}
