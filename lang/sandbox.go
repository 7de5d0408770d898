package lang

import (
	"log/slog"
)

// forbiddenNames are property names that can never be read or assigned.
var forbiddenNames = map[string]struct{}{
	"constructor":      {},
	"__proto__":        {},
	"__defineGetter__": {},
	"__defineSetter__": {},
	"__lookupGetter__": {},
	"__lookupSetter__": {},
}

// Guard reports whether value must never be reachable from an expression.
type Guard func(value any) bool

// DefaultGuards are the guards installed when [WithGuards] is not given.
func DefaultGuards() []Guard { return []Guard{IsWindow, IsDOMNode} }

// IsWindow reports whether v looks like a host global object: it has a
// "window" property referring to itself, or both "document" and "location".
func IsWindow(v any) bool {
	o, ok := AsObject(v)
	if !ok {
		return false
	}

	if w, ok := o.Get("window"); ok && !isNullish(w) && sameReference(w, v) {
		return true
	}

	return Has(o, "document") && Has(o, "location")
}

// IsDOMNode reports whether v looks like a document node or a wrapped node
// collection: it has "children" plus either "nodeName" and "getAttribute",
// or "prop", "attr" and "find".
func IsDOMNode(v any) bool {
	o, ok := AsObject(v)
	if !ok || !Has(o, "children") {
		return false
	}

	return (Has(o, "nodeName") && Has(o, "getAttribute")) ||
		(Has(o, "prop") && Has(o, "attr") && Has(o, "find"))
}

// CheckName returns an [ErrSecurity] error if name can never be used as a
// property name.
func CheckName(name string) error {
	if _, ok := forbiddenNames[name]; ok {
		return ErrSecurity.Detail("referencing " + name + " is disallowed").
			With(slog.String("name", name))
	}

	return nil
}

// sandbox applies the configured guards to values crossing the boundary
// between the expression and the host.
type sandbox []Guard

func (s sandbox) check(v any, role string) error {
	if isNullish(v) {
		return nil
	}

	switch v.(type) {
	case bool, string, float64:
		return nil
	}

	for _, g := range s {
		if g(v) {
			return ErrSecurity.Detail("referencing a forbidden object").
				With(slog.String("role", role), slog.String("type", TypeOf(v)))
		}
	}

	return nil
}

// CheckValue returns an [ErrSecurity] error if any of guards matches v. With
// no guards, [DefaultGuards] apply.
func CheckValue(v any, guards ...Guard) error {
	if len(guards) == 0 {
		guards = DefaultGuards()
	}

	return sandbox(guards).check(v, "value")
}
