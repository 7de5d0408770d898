package lang

import (
	"fmt"
	"log/slog"
)

// Evaluator computes a value from a scope and optional locals.
type Evaluator interface {
	Eval(scope, locals any) (any, error)
	// Constant reports whether the result is independent of scope and
	// locals.
	Constant() bool
	// Literal reports whether the evaluator is a literal value.
	Literal() bool
}

// EvalFunc adapts a function to [Evaluator]. It is neither constant nor
// literal.
type EvalFunc func(scope, locals any) (any, error)

func (f EvalFunc) Eval(scope, locals any) (any, error) { return f(scope, locals) }

func (EvalFunc) Constant() bool { return false }

func (EvalFunc) Literal() bool { return false }

// Noop is the evaluator produced by Parse(nil). It always yields
// [Undefined].
var Noop Evaluator = EvalFunc(func(any, any) (any, error) { return Undefined, nil })

// Parse returns an evaluator for source, which may be:
//
//   - a string, compiled as an expression;
//   - an [Evaluator], returned unchanged;
//   - a func(scope, locals any) (any, error), wrapped as an [EvalFunc];
//   - nil, yielding [Noop].
func Parse(source any, opts ...Option) (Evaluator, error) {
	switch s := source.(type) {
	case nil:
		return Noop, nil
	case string:
		e, err := ParseExpr(s, opts...)
		if err != nil {
			return nil, err
		}

		return e, nil
	case Evaluator:
		return s, nil
	case func(scope, locals any) (any, error):
		return EvalFunc(s), nil
	}

	return nil, ErrParse.Detail(fmt.Sprintf("unsupported source type %T", source)).
		With(slog.String("type", fmt.Sprintf("%T", source)))
}

// ParseExpr compiles expression source text.
func ParseExpr(source string, opts ...Option) (*Expr, error) {
	o := makeOptions(opts...)

	if o.cached && !o.custom {
		return parseCached(source, o)
	}

	return compileSource(source, o)
}

func compileSource(source string, o options) (*Expr, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		o.logger.Debug("lex failed", slog.String("source", source), slog.Any("error", err))

		return nil, err
	}

	root, err := ParseTokens(tokens)
	if err != nil {
		o.logger.Debug("parse failed", slog.String("source", source), slog.Any("error", err))

		return nil, err
	}

	c := compiler{guard: o.guards}

	fn, err := c.compile(root)
	if err != nil {
		return nil, err
	}

	o.logger.Trace("compiled",
		slog.String("source", source),
		slog.Int("tokens", len(tokens)),
		slog.Bool("constant", root.IsConstant()),
		slog.Bool("literal", root.IsLiteral()),
	)

	return &Expr{source: source, root: root, eval: fn, guard: c.guard}, nil
}
