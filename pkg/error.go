package pkg

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Error represents a chain of errors, from the most general context to the
// most specific cause.
//
// The command-line tool reports failures as an Error so that each layer can
// add detail without losing the sentinel it started from. Every element
// remains visible to errors.Is and errors.As.
type Error []error

// Sentinel errors of the command-line tool.
var (
	// ErrReadInput is returned when a scope file, script or stdin cannot be
	// read.
	ErrReadInput = MakeErrorf("failed to read input")
	// ErrNotFound is returned when a relative path is not found in any
	// directory of the search path.
	ErrNotFound = MakeErrorf("file not found in search path")
	// ErrInvalidFormat is returned for an unknown file extension or output
	// format.
	ErrInvalidFormat = MakeErrorf("invalid format")
	// ErrDecodeScope is returned when scope data cannot be decoded or is not
	// a mapping at the top level.
	ErrDecodeScope = MakeErrorf("failed to decode scope data")
	// ErrEncodeScope is returned when a scope snapshot cannot be written.
	ErrEncodeScope = MakeErrorf("failed to encode scope data")
	// ErrScript is returned when a watch script is malformed.
	ErrScript = MakeErrorf("invalid watch script")
)

// MakeError constructs an Error from the given errors in order. Each
// argument is flattened with UnwrapErrors, and nil arguments are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain with ": ".
func (e Error) Error() string {
	part := make([]string, 0, len(e))

	for _, err := range e {
		part = append(part, err.Error())
	}

	return strings.Join(part, ": ")
}

// Is reports whether target is a sentinel Error whose message heads any
// part of e. It lets errors.Is match sentinels after Wrap.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) != 1 {
		return false
	}

	return slices.ContainsFunc(e, func(err error) bool { return same(err, t[0]) })
}

func same(a, b error) bool {
	ta := reflect.TypeOf(a)

	return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
}

// Wrap returns a copy of e with err appended as more specific detail.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf returns a copy of e with a formatted message appended as more
// specific detail.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors of the chain.
func (e Error) Unwrap() []error { return e }

// UnwrapErrors flattens err and everything it wraps into a chain. Wrapped
// errors precede the error wrapping them.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case Error:
		return slices.Clone(e)
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
