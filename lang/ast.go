package lang

// Node is an element of an expression syntax tree. Literal and constant
// flags are computed once when the node is built.
//
// A node is literal when it is a primitive, array or object literal. It is
// constant when its value cannot depend on scope or locals: literals whose
// elements are all constant, and operators over constant operands.
type Node interface {
	Pos() int
	IsLiteral() bool
	IsConstant() bool
}

type node struct {
	pos      int
	literal  bool
	constant bool
}

func (n node) Pos() int { return n.pos }
func (n node) IsLiteral() bool { return n.literal }
func (n node) IsConstant() bool { return n.constant }

// LiteralNode is a number, string, boolean or null.
type LiteralNode struct {
	node

	Value any
}

// ArrayNode is an array literal.
type ArrayNode struct {
	node

	Elements []Node
}

// Property is a key-value entry of an [ObjectNode].
type Property struct {
	Key   string
	Value Node
}

// ObjectNode is an object literal.
type ObjectNode struct {
	node

	Properties []Property
}

// IdentifierNode is a bare name resolved against locals, then scope.
type IdentifierNode struct {
	node

	Name string
}

// MemberNode is a property access. When Computed is false Property is a
// string [LiteralNode] holding the name following the dot.
type MemberNode struct {
	node

	Object   Node
	Property Node
	Computed bool
}

// CallNode is a function invocation.
type CallNode struct {
	node

	Callee Node
	Args   []Node
}

// AssignNode stores Value into Target, which is an [IdentifierNode] or
// [MemberNode].
type AssignNode struct {
	node

	Target Node
	Value  Node
}

// UnaryNode applies one of "+", "-" or "!" to Operand.
type UnaryNode struct {
	node

	Op      string
	Operand Node
}

// BinaryNode applies an arithmetic, relational or equality operator.
type BinaryNode struct {
	node

	Op          string
	Left, Right Node
}

func allConstant[N any](items []N, get func(N) Node) bool {
	for _, it := range items {
		if !get(it).IsConstant() {
			return false
		}
	}

	return true
}

func identity(n Node) Node { return n }

func newLiteral(pos int, v any) *LiteralNode {
	return &LiteralNode{node: node{pos: pos, literal: true, constant: true}, Value: v}
}

func newArray(pos int, elems []Node) *ArrayNode {
	return &ArrayNode{
		node:     node{pos: pos, literal: true, constant: allConstant(elems, identity)},
		Elements: elems,
	}
}

func newObject(pos int, props []Property) *ObjectNode {
	return &ObjectNode{
		node: node{
			pos:      pos,
			literal:  true,
			constant: allConstant(props, func(p Property) Node { return p.Value }),
		},
		Properties: props,
	}
}

func newIdentifier(pos int, name string) *IdentifierNode {
	return &IdentifierNode{node: node{pos: pos}, Name: name}
}

func newMember(pos int, obj, prop Node, computed bool) *MemberNode {
	return &MemberNode{node: node{pos: pos}, Object: obj, Property: prop, Computed: computed}
}

func newCall(pos int, callee Node, args []Node) *CallNode {
	return &CallNode{node: node{pos: pos}, Callee: callee, Args: args}
}

func newAssign(pos int, target, value Node) *AssignNode {
	return &AssignNode{node: node{pos: pos}, Target: target, Value: value}
}

func newUnary(pos int, op string, operand Node) *UnaryNode {
	return &UnaryNode{
		node:    node{pos: pos, constant: operand.IsConstant()},
		Op:      op,
		Operand: operand,
	}
}

func newBinary(pos int, op string, left, right Node) *BinaryNode {
	return &BinaryNode{
		node:  node{pos: pos, constant: left.IsConstant() && right.IsConstant()},
		Op:    op,
		Left:  left,
		Right: right,
	}
}
