// Package lang implements the binding expression language: a lexer, a
// precedence-climbing parser, and a compiler that turns syntax trees into
// reusable [Evaluator] values.
//
// Expressions are side-effect free except for assignment and host function
// calls:
//
//	e, err := lang.Parse("user.name + ' <' + user.email + '>'")
//	v, err := e.Eval(scope, nil)
//
// Identifiers resolve against locals first (when locals owns the name) and
// then against the scope. Reading through a missing value yields
// [Undefined] instead of an error. Assignment creates missing intermediate
// objects on the way to the target.
//
// A sandbox rejects forbidden property names such as "constructor" and any
// value matched by the configured [Guard] list, failing with [ErrSecurity].
package lang
