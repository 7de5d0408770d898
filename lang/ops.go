package lang

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// TypeOf returns the dynamic type name of v: "undefined", "null", "boolean",
// "number", "string", "function", "array" or "object".
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case Function:
		return "function"
	}

	if isNumber(v) {
		return "number"
	}

	if reflect.TypeOf(v).Kind() == reflect.Func {
		return "function"
	}

	return "object"
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return true
	}

	return false
}

// ToNumber converts v to a float64 following the numeric conversion rules
// of the expression language: null and false are 0, true is 1, strings are
// parsed (blank is 0), and everything else is NaN.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case uintptr:
		return float64(n)
	case bool:
		if n {
			return 1
		}

		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}

		return math.NaN()
	case []any:
		switch len(n) {
		case 0:
			return 0
		case 1:
			return ToNumber(ToString(n[0]))
		}
	}

	return math.NaN()
}

// ToString converts v to its string form. Integral numbers print without a
// fraction, arrays join their elements with commas, and objects print as
// "[object Object]".
func ToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(s)
	case []any:
		part := make([]string, len(s))
		for i, e := range s {
			if !isNullish(e) {
				part[i] = ToString(e)
			}
		}

		return strings.Join(part, ",")
	}

	if isNumber(v) {
		return formatNumber(ToNumber(v))
	}

	if TypeOf(v) == "function" {
		return "function"
	}

	return "[object Object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// strconv pads the exponent to two digits
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)

		return s
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v is truthy: everything except false, 0, NaN, "",
// null and undefined.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil, undefinedType:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}

	if isNumber(v) {
		f := ToNumber(v)

		return f != 0 && !math.IsNaN(f)
	}

	return true
}

// StrictEqual implements the "===" operator: operands are equal when they
// have the same dynamic type and value. Numbers compare numerically
// regardless of Go kind, containers and functions compare by identity, and
// NaN is never equal to anything.
func StrictEqual(a, b any) bool {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta {
	case "undefined", "null":
		return true
	case "number":
		return ToNumber(a) == ToNumber(b)
	case "boolean", "string":
		return a == b
	}

	return sameReference(a, b)
}

// sameReference reports whether a and b denote the same container or
// function instance. Slices are identified by their backing array alone, so
// a slice grown in place within its capacity is the same reference. Host
// slices with zero capacity all share one backing pointer and so have no
// identity of their own; array literals always allocate.
func sameReference(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer,
		reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}

	if va.Type().Comparable() {
		return a == b
	}

	return false
}

// LooseEqual implements the "==" operator. null and undefined equal each
// other, numbers and strings compare numerically, booleans convert to
// numbers, and objects compare against primitives by their string form.
func LooseEqual(a, b any) bool {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta == tb {
		return StrictEqual(a, b)
	}

	switch {
	case isNullish(a) && isNullish(b):
		return true
	case isNullish(a) || isNullish(b):
		return false
	case ta == "boolean":
		return LooseEqual(ToNumber(a), b)
	case tb == "boolean":
		return LooseEqual(a, ToNumber(b))
	case ta == "number" && tb == "string", ta == "string" && tb == "number":
		return ToNumber(a) == ToNumber(b)
	case isComposite(ta) && !isComposite(tb):
		return LooseEqual(ToString(a), b)
	case !isComposite(ta) && isComposite(tb):
		return LooseEqual(a, ToString(b))
	}

	return false
}

func isComposite(t string) bool {
	return t == "object" || t == "array" || t == "function"
}

// plus implements "+". A single undefined operand is treated as 0; two
// undefined operands yield undefined.
func plus(a, b any) any {
	ua, ub := IsUndefined(a), IsUndefined(b)

	switch {
	case ua && ub:
		return Undefined
	case ua:
		a = 0.0
	case ub:
		b = 0.0
	}

	_, sa := a.(string)
	_, sb := b.(string)

	if sa || sb || (isComposite(TypeOf(a)) || isComposite(TypeOf(b))) {
		return ToString(a) + ToString(b)
	}

	return ToNumber(a) + ToNumber(b)
}

// minus implements "-". Undefined operands are treated as 0.
func minus(a, b any) any {
	if IsUndefined(a) {
		a = 0.0
	}

	if IsUndefined(b) {
		b = 0.0
	}

	return ToNumber(a) - ToNumber(b)
}

func multiply(a, b any) any { return ToNumber(a) * ToNumber(b) }

func divide(a, b any) any { return ToNumber(a) / ToNumber(b) }

// remainder truncates toward zero so the result has the sign of a.
func remainder(a, b any) any { return math.Mod(ToNumber(a), ToNumber(b)) }

// compare implements the relational operators. Two strings compare
// lexically; anything else compares numerically, and NaN is unordered.
func compare(op string, a, b any) bool {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			c := strings.Compare(sa, sb)

			return ordered(op, c < 0, c == 0)
		}
	}

	x, y := ToNumber(a), ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}

	return ordered(op, x < y, x == y)
}

func ordered(op string, less, equal bool) bool {
	switch op {
	case "<":
		return less
	case "<=":
		return less || equal
	case ">":
		return !less && !equal
	case ">=":
		return !less
	}

	return false
}
