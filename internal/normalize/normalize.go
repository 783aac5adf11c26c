// Package normalize coerces whatever an analyzer returned into an ordered
// sequence of findings.
package normalize

import (
	"iter"
	"reflect"
)

// Findings converts raw analyzer output into a finding sequence. It never
// panics and never returns nil:
//
//   - nil, typed nil, and empty or zero values become an empty sequence
//   - []any is returned as is
//   - other slices and arrays are copied element by element, in order
//   - maps and structs are single records and become one-element sequences
//   - iter.Seq[any] is collected
//   - anything else is wrapped as a one-element sequence
//
// Findings(Findings(x)) equals Findings(x).
func Findings(raw any) (out []any) {
	defer func() {
		// Reflection on exotic values must not take the pipeline down.
		if r := recover(); r != nil {
			out = []any{raw}
		}
	}()

	switch v := raw.(type) {
	case nil:
		return []any{}
	case []any:
		if v == nil {
			return []any{}
		}
		return v
	case iter.Seq[any]:
		return collect(v)
	case func(func(any) bool):
		return collect(v)
	}

	rv := reflect.ValueOf(raw)
	if isEmpty(rv) {
		return []any{}
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out = make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Pointer:
		elem := rv.Elem()
		if elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
			return Findings(elem.Interface())
		}
	}
	return []any{raw}
}

func collect(seq iter.Seq[any]) []any {
	out := []any{}
	if seq == nil {
		return out
	}
	for f := range seq {
		out = append(out, f)
	}
	return out
}

// isEmpty reports the values treated as "no findings".
func isEmpty(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	}
	return false
}
