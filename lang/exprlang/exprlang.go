// Package exprlang adapts github.com/expr-lang/expr programs to the
// [lang.Evaluator] interface so they can be watched and evaluated by a
// scope alongside native expressions.
package exprlang

import (
	"log/slog"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/bind/lang"
)

// Errors returned by this package.
var (
	ErrCompile  = lang.NewError("expr compile error")
	ErrEvaluate = lang.NewError("expr evaluate error")
)

// Program is a compiled expr-lang program.
type Program struct {
	source   string
	program  *vm.Program
	literal  bool
	constant bool
}

// Compile compiles expr-lang source. Variables are resolved at evaluation
// time from the scope and locals, so undefined names evaluate to nil rather
// than failing compilation. Programs run under the same sandbox as native
// expressions: forbidden property names fail compilation, and objects
// matched by [lang.DefaultGuards] fail evaluation when read through, passed
// to a function or returned.
func Compile(src string, opts ...expr.Option) (*Program, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", src))
	}

	var names nameVisitor

	ast.Walk(&tree.Node, &names)

	if names.err != nil {
		return nil, ErrCompile.Wrap(names.err).With(slog.String("source", src))
	}

	opts = append(append([]expr.Option{expr.AllowUndefinedVariables()},
		sandboxOptions()...), opts...)

	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", src))
	}

	var v constVisitor
	ast.Walk(&tree.Node, &v)

	return &Program{
		source:   src,
		program:  program,
		literal:  isLiteral(tree.Node),
		constant: !v.variable,
	}, nil
}

// Eval runs p with an environment made of the keys of scope overlaid with
// the keys of locals.
func (p *Program) Eval(scope, locals any) (any, error) {
	env := make(map[string]any)
	bind(env, scope)
	bind(env, locals)

	out, err := vm.Run(p.program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", p.source))
	}

	if err := lang.CheckValue(out); err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", p.source))
	}

	return normalize(out), nil
}

// Constant reports whether p references no variables and calls no
// functions.
func (p *Program) Constant() bool { return p.constant }

// Literal reports whether p is a literal scalar, array or map.
func (p *Program) Literal() bool { return p.literal }

func (p *Program) String() string { return p.source }

func bind(env map[string]any, src any) {
	obj, ok := lang.AsObject(src)
	if !ok {
		return
	}

	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		env[key] = export(v)
	}
}

// export converts a value of the expression language into one expr-lang
// can operate on.
func export(v any) any {
	switch t := v.(type) {
	case lang.Function:
		return func(args ...any) (any, error) {
			out, err := t(lang.Undefined, args...)

			return export(out), err
		}
	}

	if lang.IsUndefined(v) {
		return nil
	}

	return v
}

// normalize maps expr-lang integers onto the float64 numbers used by the
// expression language.
func normalize(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	}

	return v
}

func isLiteral(n ast.Node) bool {
	switch t := n.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode:
		return true
	case *ast.UnaryNode:
		return t.Operator == "-" && isLiteral(t.Node)
	case *ast.ArrayNode:
		for _, e := range t.Nodes {
			if !isLiteral(e) {
				return false
			}
		}

		return true
	case *ast.MapNode:
		for _, p := range t.Pairs {
			pair, ok := p.(*ast.PairNode)
			if !ok || !isLiteral(pair.Key) || !isLiteral(pair.Value) {
				return false
			}
		}

		return true
	}

	return false
}

// constVisitor records whether a tree reads anything other than literals.
type constVisitor struct {
	variable bool
}

func (v *constVisitor) Visit(node *ast.Node) {
	switch (*node).(type) {
	case *ast.IdentifierNode, *ast.CallNode, *ast.BuiltinNode,
		*ast.PointerNode, *ast.VariableDeclaratorNode:
		v.variable = true
	}
}
