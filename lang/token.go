package lang

import "strconv"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenString
	TokenIdentifier
	TokenOperator
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenIdentifier:
		return "identifier"
	case TokenOperator:
		return "operator"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a single lexical unit of an expression.
type Token struct {
	// Text is the exact source text of the token.
	Text string    `json:"text" yaml:"text"`
	Kind TokenKind `json:"kind" yaml:"kind"`
	// Value holds the decoded float64 of a number token or the unescaped
	// string of a string token. It is nil for other kinds.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
	// Pos is the byte offset of the token in the source.
	Pos int `json:"pos" yaml:"pos"`
}

// MarshalText lets [TokenKind] render by name in JSON and YAML dumps.
func (k TokenKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")@" + strconv.Itoa(t.Pos)
}

// is reports whether t is an operator token spelled as one of ops.
func (t Token) is(ops ...string) bool {
	if t.Kind != TokenOperator {
		return false
	}

	for _, op := range ops {
		if t.Text == op {
			return true
		}
	}

	return false
}

// operators lists every operator and punctuator, grouped by length so the
// lexer can match the longest candidate first.
var operators = [...]map[string]struct{}{
	3: {"===": {}, "!==": {}},
	2: {"==": {}, "!=": {}, "<=": {}, ">=": {}},
	1: {
		"+": {}, "-": {}, "*": {}, "/": {}, "%": {}, "=": {}, "<": {}, ">": {},
		"!": {}, ".": {}, ",": {}, ":": {}, "(": {}, ")": {}, "[": {}, "]": {},
		"{": {}, "}": {},
	},
}
