package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package derives from one of these, so callers
// can test the failure class with [errors.Is] regardless of the attributes
// attached.
var (
	ErrLex           = NewError("lex error")
	ErrParse         = NewError("parse error")
	ErrSecurity      = NewError("security violation")
	ErrNotFunction   = NewError("value is not a function")
	ErrNotAssignable = NewError("value is not assignable")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	root  *Error // sentinel this error was derived from
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// WrapError converts err to an *Error, returning it unchanged when it
// already is one.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error implements the error interface, formatted as "<msg>: <cause>".
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	for _, a := range e.attrs {
		if a.Key == "detail" {
			part = append(part, a.Value.String())
		}
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.root != nil && e.root == t.root
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{root: e.root, msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{root: e.root, msg: e.msg, err: e.err, attrs: merged}
}

// Detail returns a copy of e carrying a human-readable detail that is
// included in the error string.
func (e *Error) Detail(detail string) *Error {
	return e.With(slog.String("detail", detail))
}
