package exprlang

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/bind/lang"
)

// Functions injected into every program by [guardPatcher].
const (
	guardFunc = "__bind_guard"
	nameFunc  = "__bind_name"
)

func sandboxOptions() []expr.Option {
	return []expr.Option{
		expr.Function(guardFunc, func(params ...any) (any, error) {
			if err := lang.CheckValue(params[0]); err != nil {
				return nil, err
			}

			return params[0], nil
		}),
		expr.Function(nameFunc, func(params ...any) (any, error) {
			if name, ok := params[0].(string); ok {
				if err := lang.CheckName(name); err != nil {
					return nil, err
				}
			}

			return params[0], nil
		}),
		expr.Patch(guardPatcher{}),
	}
}

// guardPatcher routes every object a member is read from, every computed
// property name and every call argument through the sandbox functions.
type guardPatcher struct{}

func (guardPatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.MemberNode:
		n.Node = call(guardFunc, n.Node)
		if _, ok := n.Property.(*ast.StringNode); !ok {
			n.Property = call(nameFunc, n.Property)
		}
	case *ast.CallNode:
		for i, arg := range n.Arguments {
			n.Arguments[i] = call(guardFunc, arg)
		}
	}
}

func call(fn string, arg ast.Node) ast.Node {
	c := &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: fn},
		Arguments: []ast.Node{arg},
	}
	c.SetLocation(arg.Location())

	return c
}

// nameVisitor records the first member read through a forbidden name
// written literally in the source.
type nameVisitor struct {
	err error
}

func (v *nameVisitor) Visit(node *ast.Node) {
	m, ok := (*node).(*ast.MemberNode)
	if !ok || v.err != nil {
		return
	}

	if s, ok := m.Property.(*ast.StringNode); ok {
		if err := lang.CheckName(s.Value); err != nil {
			v.err = err
		}
	}
}
