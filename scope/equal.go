package scope

import (
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/bind/lang"
)

// valueEqual compares watched values structurally. Functions compare by
// identity, and NaN equals NaN.
var valueEqual = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmp.FilterValues(
		func(x, y any) bool { return isFunc(x) && isFunc(y) },
		cmp.Comparer(lang.StrictEqual),
	),
}

func (w *watcher) equal(value any) bool {
	if _, ok := w.last.(unset); ok {
		return false
	}

	if w.deep {
		return cmp.Equal(value, w.last, valueEqual...)
	}

	return lang.StrictEqual(value, w.last) || (isNaN(value) && isNaN(w.last))
}

func isNaN(v any) bool {
	return lang.TypeOf(v) == "number" && math.IsNaN(lang.ToNumber(v))
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// deepCopy copies the containers of the expression value model so later
// in-place mutation of v does not alter the copy. Other values, including
// Objects that are not maps, are returned as is.
func deepCopy(v any) any {
	switch t := v.(type) {
	case []any:
		if t == nil {
			return t
		}

		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}

		return out
	case lang.Map:
		if t == nil {
			return t
		}

		out := make(lang.Map, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}

		return out
	case map[string]any:
		if t == nil {
			return t
		}

		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}

		return out
	}

	return copyReflect(v)
}

// copyReflect copies slices and maps of other element types one level deep.
func copyReflect(v any) any {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}

		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)

		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), iter.Value())
		}

		return out.Interface()
	}

	return v
}
