package lang

import (
	"log/slog"
	"reflect"
)

// lookup resolves an identifier, preferring locals that own the name.
func lookup(name string, scope, locals any) any {
	if o, ok := AsObject(locals); ok {
		if v, ok := o.Get(name); ok {
			return v
		}
	}

	if o, ok := AsObject(scope); ok {
		if v, ok := o.Get(name); ok {
			return v
		}
	}

	return Undefined
}

// store assigns value to obj[key].
func store(obj, key, value any) error {
	if a, ok := obj.([]any); ok {
		if i, ok := arrayIndex(key); ok && i < len(a) {
			a[i] = value

			return nil
		}

		return ErrNotAssignable.Detail("array index out of range").
			With(slog.String("key", ToString(key)), slog.Int("length", len(a)))
	}

	o, ok := AsObject(obj)
	if !ok {
		return ErrNotAssignable.Detail("cannot set property " + ToString(key) + " of " + TypeOf(obj)).
			With(slog.String("key", ToString(key)))
	}

	o.Set(ToString(key), value)

	return nil
}

// Call invokes fn with the given receiver and arguments using the same rules
// as a call expression.
func Call(fn, this any, args ...any) (any, error) {
	switch f := fn.(type) {
	case Function:
		return f(this, args...)
	case func(...any) (any, error):
		return f(args...)
	case func(...any) any:
		return f(args...), nil
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, ErrNotFunction.Detail(TypeOf(fn) + " is not a function").
			With(slog.String("type", TypeOf(fn)))
	}

	if rv.IsNil() {
		return Undefined, nil
	}

	return callReflect(rv, args)
}

var errorType = reflect.TypeFor[error]()

func callReflect(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	n := t.NumIn()

	in := make([]reflect.Value, 0, max(n, len(args)))

	for i := 0; i < n || (t.IsVariadic() && i < len(args)); i++ {
		var pt reflect.Type

		switch {
		case t.IsVariadic() && i >= n-1:
			pt = t.In(n - 1).Elem()
		case i < n:
			pt = t.In(i)
		}

		var arg any = Undefined
		if i < len(args) {
			arg = args[i]
		} else if t.IsVariadic() && i >= n-1 {
			break
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, err
		}

		in = append(in, v)
	}

	out := fn.Call(in)

	var (
		result any = Undefined
		err    error
	)

	for _, o := range out {
		if o.Type() == errorType {
			if !o.IsNil() {
				err, _ = o.Interface().(error)
			}

			continue
		}

		result = o.Interface()
	}

	return result, err
}

func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	if isNullish(v) {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case t.Kind() == reflect.String:
		return reflect.ValueOf(ToString(v)).Convert(t), nil
	case t.Kind() == reflect.Bool:
		return reflect.ValueOf(Truthy(v)).Convert(t), nil
	case isNumericKind(t.Kind()):
		return reflect.ValueOf(ToNumber(v)).Convert(t), nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}

	return reflect.Value{}, ErrNotFunction.Detail("cannot pass " + TypeOf(v) + " as " + t.String())
}

func isNumericKind(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}
