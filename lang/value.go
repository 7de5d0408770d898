package lang

import (
	"maps"
	"slices"
)

type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }

// Undefined is the value of a missing property, an unset identifier, or the
// result of a function that returns nothing. It is distinct from nil, which
// represents null.
var Undefined any = undefinedType{}

// IsUndefined reports whether v is [Undefined].
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)

	return ok
}

// isNullish reports whether v is nil or [Undefined].
func isNullish(v any) bool { return v == nil || IsUndefined(v) }

// Object is a string-keyed property container that expressions can read
// and assign through.
type Object interface {
	// Get returns the value stored under key and whether key is present.
	Get(key string) (any, bool)
	Set(key string, value any)
	Keys() []string
}

// Map is the default [Object]. Object literals and auto-created containers
// evaluate to a Map.
type Map map[string]any

func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]

	return v, ok
}

func (m Map) Set(key string, value any) { m[key] = value }

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string { return slices.Sorted(maps.Keys(m)) }

// Function is a callable value. this is the object the function was read
// from when invoked as a method, or [Undefined] for a bare call.
type Function func(this any, args ...any) (any, error)

// AsObject returns v as an [Object] if it is one or is a plain
// map[string]any.
func AsObject(v any) (Object, bool) {
	switch o := v.(type) {
	case Object:
		return o, true
	case map[string]any:
		return Map(o), true
	default:
		return nil, false
	}
}

// Has reports whether v is an object that owns key.
func Has(v any, key string) bool {
	o, ok := AsObject(v)
	if !ok {
		return false
	}

	_, ok = o.Get(key)

	return ok
}

// Get reads property key of v with the lookup rules of member access. It
// returns [Undefined] for nil and undefined receivers and for missing keys.
// Forbidden names are not checked.
func Get(v any, key any) any {
	if isNullish(v) {
		return Undefined
	}

	switch o := v.(type) {
	case []any:
		if i, ok := arrayIndex(key); ok {
			if i < len(o) {
				return o[i]
			}

			return Undefined
		}

		if ToString(key) == "length" {
			return float64(len(o))
		}

		return Undefined

	case string:
		if i, ok := arrayIndex(key); ok {
			if r := []rune(o); i < len(r) {
				return string(r[i])
			}

			return Undefined
		}

		if ToString(key) == "length" {
			return float64(len([]rune(o)))
		}

		return Undefined
	}

	if o, ok := AsObject(v); ok {
		if val, ok := o.Get(ToString(key)); ok {
			return val
		}
	}

	return Undefined
}

// arrayIndex converts a property key to a non-negative integer index.
func arrayIndex(key any) (int, bool) {
	var f float64

	switch k := key.(type) {
	case string:
		f = ToNumber(k)
		if ToString(f) != k {
			return 0, false
		}
	default:
		if !isNumber(key) {
			return 0, false
		}

		f = ToNumber(key)
	}

	if f < 0 || f != float64(int(f)) {
		return 0, false
	}

	return int(f), true
}
