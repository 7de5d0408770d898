package repl

import "github.com/ardnew/bind/lang"

// Sentinel errors.
var (
	ErrOutOfBounds = lang.NewError("history index out of range")
	ErrUsage       = lang.NewError("usage")
	ErrNoWatch     = lang.NewError("no such watch")
)
