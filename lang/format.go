package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// Format renders n as expression source. Parentheses are inserted only
// where precedence requires them, so parsing the result yields an
// equivalent tree.
func Format(n Node) string {
	var b strings.Builder

	format(&b, n)

	return b.String()
}

const (
	precAssign = iota + 1
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var binaryPrec = map[string]int{
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

func precedence(n Node) int {
	switch n := n.(type) {
	case *AssignNode:
		return precAssign
	case *BinaryNode:
		return binaryPrec[n.Op]
	case *UnaryNode:
		return precUnary
	default:
		return precPostfix
	}
}

// operand renders n, parenthesized when it binds looser than floor.
func operand(b *strings.Builder, n Node, floor int) {
	if precedence(n) < floor {
		b.WriteByte('(')
		format(b, n)
		b.WriteByte(')')

		return
	}

	format(b, n)
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *LiteralNode:
		b.WriteString(formatLiteral(n.Value))

	case *ArrayNode:
		b.WriteByte('[')

		for i, e := range n.Elements {
			if i > 0 {
				b.WriteString(", ")
			}

			format(b, e)
		}

		b.WriteByte(']')

	case *ObjectNode:
		b.WriteByte('{')

		for i, p := range n.Properties {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(formatKey(p.Key))
			b.WriteString(": ")
			format(b, p.Value)
		}

		b.WriteByte('}')

	case *IdentifierNode:
		b.WriteString(n.Name)

	case *MemberNode:
		operand(b, n.Object, precPostfix)

		if n.Computed {
			b.WriteByte('[')
			format(b, n.Property)
			b.WriteByte(']')
		} else {
			b.WriteByte('.')
			b.WriteString(ToString(n.Property.(*LiteralNode).Value))
		}

	case *CallNode:
		operand(b, n.Callee, precPostfix)
		b.WriteByte('(')

		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			format(b, a)
		}

		b.WriteByte(')')

	case *AssignNode:
		operand(b, n.Target, precPostfix)
		b.WriteString(" = ")
		operand(b, n.Value, precAssign)

	case *UnaryNode:
		b.WriteString(n.Op)
		// keep "- -a" from collapsing into a different token sequence
		if u, ok := n.Operand.(*UnaryNode); ok && u.Op == n.Op {
			b.WriteByte(' ')
		}

		operand(b, n.Operand, precUnary)

	case *BinaryNode:
		p := binaryPrec[n.Op]

		operand(b, n.Left, p)
		b.WriteString(" " + n.Op + " ")
		operand(b, n.Right, p+1)
	}
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case nil:
		return "null"
	case undefinedType:
		return ""
	}

	return ToString(v)
}

func formatKey(k string) string {
	if k == "" {
		return quote(k)
	}

	for i, r := range k {
		if (i == 0 && !isIdentStart(r)) || !isIdentPart(r) {
			return quote(k)
		}
	}

	return k
}

func quote(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		default:
			if r < 0x20 || r == utf8.RuneError {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}

// ToMap converts n into nested maps and slices suitable for encoding.
func ToMap(n Node) map[string]any {
	m := map[string]any{
		"pos":      n.Pos(),
		"literal":  n.IsLiteral(),
		"constant": n.IsConstant(),
	}

	switch n := n.(type) {
	case *LiteralNode:
		m["type"] = "Literal"
		if IsUndefined(n.Value) {
			m["value"] = "undefined"
		} else {
			m["value"] = n.Value
		}

	case *ArrayNode:
		m["type"] = "Array"
		m["elements"] = toMaps(n.Elements)

	case *ObjectNode:
		m["type"] = "Object"
		props := make([]map[string]any, len(n.Properties))

		for i, p := range n.Properties {
			props[i] = map[string]any{"key": p.Key, "value": ToMap(p.Value)}
		}

		m["properties"] = props

	case *IdentifierNode:
		m["type"] = "Identifier"
		m["name"] = n.Name

	case *MemberNode:
		m["type"] = "Member"
		m["object"] = ToMap(n.Object)
		m["property"] = ToMap(n.Property)
		m["computed"] = n.Computed

	case *CallNode:
		m["type"] = "Call"
		m["callee"] = ToMap(n.Callee)
		m["arguments"] = toMaps(n.Args)

	case *AssignNode:
		m["type"] = "Assign"
		m["target"] = ToMap(n.Target)
		m["value"] = ToMap(n.Value)

	case *UnaryNode:
		m["type"] = "Unary"
		m["operator"] = n.Op
		m["operand"] = ToMap(n.Operand)

	case *BinaryNode:
		m["type"] = "Binary"
		m["operator"] = n.Op
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	}

	return m
}

func toMaps(nodes []Node) []map[string]any {
	out := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		out[i] = ToMap(n)
	}

	return out
}

// FormatJSON writes the tree of n as JSON. A positive indent pretty-prints.
func FormatJSON(_ context.Context, w io.Writer, n Node, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToMap(n), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToMap(n))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the tree of n as YAML. A non-positive indent selects
// flow style.
func FormatYAML(ctx context.Context, w io.Writer, n Node, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToMap(n), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// inspectDepth bounds the nesting Inspect renders, so self-referencing
// containers terminate.
const inspectDepth = 16

// Inspect renders the value v in expression literal syntax. Strings are
// quoted, objects list their keys in sorted order, and functions render as
// "function". Containers nested deeper than 16 levels render as "...".
func Inspect(v any) string {
	var b strings.Builder

	inspect(&b, v, 0)

	return b.String()
}

func inspect(b *strings.Builder, v any, depth int) {
	switch t := v.(type) {
	case string:
		b.WriteString(quote(t))

		return
	case undefinedType:
		b.WriteString("undefined")

		return
	case []any:
		if depth >= inspectDepth {
			b.WriteString("[...]")

			return
		}

		b.WriteByte('[')

		for i, e := range t {
			if i > 0 {
				b.WriteString(", ")
			}

			inspect(b, e, depth+1)
		}

		b.WriteByte(']')

		return
	}

	switch TypeOf(v) {
	case "object":
		obj, ok := AsObject(v)
		if !ok {
			fmt.Fprintf(b, "%v", v)

			return
		}

		if depth >= inspectDepth {
			b.WriteString("{...}")

			return
		}

		b.WriteByte('{')

		for i, k := range obj.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}

			e, _ := obj.Get(k)

			b.WriteString(formatKey(k))
			b.WriteString(": ")
			inspect(b, e, depth+1)
		}

		b.WriteByte('}')
	default:
		b.WriteString(ToString(v))
	}
}
