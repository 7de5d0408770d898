package lang

import (
	"fmt"
	"log/slog"
)

// evalFn is the compiled form of a node.
type evalFn func(scope, locals any) (any, error)

// Expr is a compiled expression. It is immutable and safe to evaluate
// concurrently against distinct scopes.
type Expr struct {
	source string
	root   Node
	eval   evalFn
	guard  sandbox
}

// Compile turns a syntax tree into an evaluator. Options other than
// [WithGuards] are ignored. A nil root compiles to an evaluator returning
// [Undefined].
func Compile(root Node, opts ...Option) (*Expr, error) {
	if root == nil {
		root = newLiteral(0, Undefined)
	}

	o := makeOptions(opts...)
	c := compiler{guard: o.guards}

	fn, err := c.compile(root)
	if err != nil {
		return nil, err
	}

	return &Expr{source: Format(root), root: root, eval: fn, guard: c.guard}, nil
}

// Eval evaluates e against scope and locals. Either may be nil.
func (e *Expr) Eval(scope, locals any) (any, error) {
	v, err := e.eval(scope, locals)
	if err != nil {
		return nil, err
	}

	if err := e.guard.check(v, "result"); err != nil {
		return nil, err
	}

	return v, nil
}

// Constant reports whether e evaluates to the same value regardless of scope.
func (e *Expr) Constant() bool { return e.root.IsConstant() }

// Literal reports whether e is a primitive, array or object literal.
func (e *Expr) Literal() bool { return e.root.IsLiteral() }

// Node returns the syntax tree e was compiled from.
func (e *Expr) Node() Node { return e.root }

// String returns the source text of e.
func (e *Expr) String() string { return e.source }

type compiler struct {
	guard sandbox
}

func (c compiler) compile(n Node) (evalFn, error) {
	switch n := n.(type) {
	case *LiteralNode:
		v := n.Value

		return func(any, any) (any, error) { return v, nil }, nil

	case *ArrayNode:
		return c.array(n)

	case *ObjectNode:
		return c.object(n)

	case *IdentifierNode:
		return c.identifier(n), nil

	case *MemberNode:
		ref, err := c.member(n, false)
		if err != nil {
			return nil, err
		}

		return func(scope, locals any) (any, error) {
			_, v, err := ref(scope, locals)

			return v, err
		}, nil

	case *CallNode:
		return c.call(n)

	case *AssignNode:
		return c.assign(n)

	case *UnaryNode:
		return c.unary(n)

	case *BinaryNode:
		return c.binary(n)
	}

	err := ErrParse.Detail(fmt.Sprintf("cannot compile %T", n))
	if n != nil {
		err = err.With(slog.Int("offset", n.Pos()))
	}

	return nil, err
}

func (c compiler) all(nodes []Node) ([]evalFn, error) {
	fns := make([]evalFn, len(nodes))

	for i, n := range nodes {
		fn, err := c.compile(n)
		if err != nil {
			return nil, err
		}

		fns[i] = fn
	}

	return fns, nil
}

func (c compiler) array(n *ArrayNode) (evalFn, error) {
	elems, err := c.all(n.Elements)
	if err != nil {
		return nil, err
	}

	return func(scope, locals any) (any, error) {
		// Zero-capacity slices share one backing pointer, which would make
		// distinct empty literals the same reference.
		a := make([]any, len(elems), max(len(elems), 1))

		for i, fn := range elems {
			v, err := fn(scope, locals)
			if err != nil {
				return nil, err
			}

			a[i] = v
		}

		return a, nil
	}, nil
}

func (c compiler) object(n *ObjectNode) (evalFn, error) {
	keys := make([]string, len(n.Properties))
	values := make([]Node, len(n.Properties))

	for i, p := range n.Properties {
		keys[i], values[i] = p.Key, p.Value
	}

	fns, err := c.all(values)
	if err != nil {
		return nil, err
	}

	return func(scope, locals any) (any, error) {
		m := make(Map, len(fns))

		for i, fn := range fns {
			v, err := fn(scope, locals)
			if err != nil {
				return nil, err
			}

			m[keys[i]] = v
		}

		return m, nil
	}, nil
}

func (c compiler) identifier(n *IdentifierNode) evalFn {
	name := n.Name

	return func(scope, locals any) (any, error) {
		if err := CheckName(name); err != nil {
			return nil, err
		}

		v := lookup(name, scope, locals)
		if err := c.guard.check(v, "identifier"); err != nil {
			return nil, err
		}

		return v, nil
	}
}

// refFn evaluates a member access to its container and value.
type refFn func(scope, locals any) (obj, value any, err error)

// key compiles the property part of a member access.
func (c compiler) key(n *MemberNode) (evalFn, error) {
	if !n.Computed {
		name, _ := n.Property.(*LiteralNode).Value.(string)

		return func(any, any) (any, error) { return name, nil }, nil
	}

	return c.compile(n.Property)
}

// member compiles a property read. In create mode missing containers along
// the path are replaced with empty objects, which is only used on the
// object side of an assignment target.
func (c compiler) member(n *MemberNode, create bool) (refFn, error) {
	var (
		object evalFn
		err    error
	)

	if create {
		object, err = c.container(n.Object)
	} else {
		object, err = c.compile(n.Object)
	}

	if err != nil {
		return nil, err
	}

	key, err := c.key(n)
	if err != nil {
		return nil, err
	}

	return func(scope, locals any) (any, any, error) {
		obj, err := object(scope, locals)
		if err != nil {
			return nil, nil, err
		}

		k, err := key(scope, locals)
		if err != nil {
			return nil, nil, err
		}

		if err := CheckName(ToString(k)); err != nil {
			return nil, nil, err
		}

		if isNullish(obj) {
			return obj, Undefined, nil
		}

		if err := c.guard.check(obj, "object"); err != nil {
			return nil, nil, err
		}

		v := Get(obj, k)
		if err := c.guard.check(v, "member"); err != nil {
			return nil, nil, err
		}

		if create && isNullish(v) {
			v = Map{}
			if err := store(obj, k, v); err != nil {
				return nil, nil, err
			}
		}

		return obj, v, nil
	}, nil
}

// container compiles n for use as the object of an assignment target,
// creating missing intermediate objects. A missing root identifier is
// created on the scope.
func (c compiler) container(n Node) (evalFn, error) {
	switch n := n.(type) {
	case *IdentifierNode:
		read := c.identifier(n)

		return func(scope, locals any) (any, error) {
			v, err := read(scope, locals)
			if err != nil || !isNullish(v) {
				return v, err
			}

			m := Map{}
			if err := store(scope, n.Name, m); err != nil {
				return nil, err
			}

			return m, nil
		}, nil

	case *MemberNode:
		ref, err := c.member(n, true)
		if err != nil {
			return nil, err
		}

		return func(scope, locals any) (any, error) {
			_, v, err := ref(scope, locals)

			return v, err
		}, nil
	}

	return c.compile(n)
}

func (c compiler) call(n *CallNode) (evalFn, error) {
	var callee refFn

	if m, ok := n.Callee.(*MemberNode); ok {
		ref, err := c.member(m, false)
		if err != nil {
			return nil, err
		}

		callee = ref
	} else {
		fn, err := c.compile(n.Callee)
		if err != nil {
			return nil, err
		}

		callee = func(scope, locals any) (any, any, error) {
			v, err := fn(scope, locals)

			return Undefined, v, err
		}
	}

	args, err := c.all(n.Args)
	if err != nil {
		return nil, err
	}

	return func(scope, locals any) (any, error) {
		this, fn, err := callee(scope, locals)
		if err != nil {
			return nil, err
		}

		if isNullish(fn) {
			return Undefined, nil
		}

		if err := c.guard.check(this, "receiver"); err != nil {
			return nil, err
		}

		if err := c.guard.check(fn, "function"); err != nil {
			return nil, err
		}

		argv := make([]any, len(args))

		for i, arg := range args {
			if argv[i], err = arg(scope, locals); err != nil {
				return nil, err
			}
		}

		v, err := Call(fn, this, argv...)
		if err != nil {
			return nil, err
		}

		if err := c.guard.check(v, "call result"); err != nil {
			return nil, err
		}

		return v, nil
	}, nil
}

func (c compiler) assign(n *AssignNode) (evalFn, error) {
	value, err := c.compile(n.Value)
	if err != nil {
		return nil, err
	}

	switch t := n.Target.(type) {
	case *IdentifierNode:
		name := t.Name

		return func(scope, locals any) (any, error) {
			v, err := value(scope, locals)
			if err != nil {
				return nil, err
			}

			if err := CheckName(name); err != nil {
				return nil, err
			}

			target := scope
			if Has(locals, name) {
				target = locals
			}

			if err := store(target, name, v); err != nil {
				return nil, err
			}

			return v, nil
		}, nil

	case *MemberNode:
		object, err := c.container(t.Object)
		if err != nil {
			return nil, err
		}

		key, err := c.key(t)
		if err != nil {
			return nil, err
		}

		return func(scope, locals any) (any, error) {
			v, err := value(scope, locals)
			if err != nil {
				return nil, err
			}

			obj, err := object(scope, locals)
			if err != nil {
				return nil, err
			}

			k, err := key(scope, locals)
			if err != nil {
				return nil, err
			}

			if err := CheckName(ToString(k)); err != nil {
				return nil, err
			}

			if err := c.guard.check(obj, "object"); err != nil {
				return nil, err
			}

			if err := store(obj, k, v); err != nil {
				return nil, err
			}

			return v, nil
		}, nil
	}

	return nil, ErrParse.Detail("cannot assign to non-assignable expression").
		With(slog.Int("offset", n.Pos()))
}

func (c compiler) unary(n *UnaryNode) (evalFn, error) {
	operand, err := c.compile(n.Operand)
	if err != nil {
		return nil, err
	}

	op := n.Op

	return func(scope, locals any) (any, error) {
		v, err := operand(scope, locals)
		if err != nil {
			return nil, err
		}

		switch op {
		case "!":
			return !Truthy(v), nil
		case "-":
			if IsUndefined(v) {
				return 0.0, nil
			}

			return -ToNumber(v), nil
		default:
			if IsUndefined(v) {
				return 0.0, nil
			}

			return ToNumber(v), nil
		}
	}, nil
}

var binaryOps = map[string]func(a, b any) any{
	"+":   plus,
	"-":   minus,
	"*":   multiply,
	"/":   divide,
	"%":   remainder,
	"==":  func(a, b any) any { return LooseEqual(a, b) },
	"!=":  func(a, b any) any { return !LooseEqual(a, b) },
	"===": func(a, b any) any { return StrictEqual(a, b) },
	"!==": func(a, b any) any { return !StrictEqual(a, b) },
	"<":   func(a, b any) any { return compare("<", a, b) },
	"<=":  func(a, b any) any { return compare("<=", a, b) },
	">":   func(a, b any) any { return compare(">", a, b) },
	">=":  func(a, b any) any { return compare(">=", a, b) },
}

func (c compiler) binary(n *BinaryNode) (evalFn, error) {
	op, ok := binaryOps[n.Op]
	if !ok {
		return nil, ErrParse.Detail("unknown operator " + n.Op).
			With(slog.Int("offset", n.Pos()))
	}

	left, err := c.compile(n.Left)
	if err != nil {
		return nil, err
	}

	right, err := c.compile(n.Right)
	if err != nil {
		return nil, err
	}

	return func(scope, locals any) (any, error) {
		a, err := left(scope, locals)
		if err != nil {
			return nil, err
		}

		b, err := right(scope, locals)
		if err != nil {
			return nil, err
		}

		return op(a, b), nil
	}, nil
}
