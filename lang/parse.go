package lang

import (
	"log/slog"
)

// ParseTokens builds a syntax tree from tokens. It fails with an error
// wrapping [ErrParse] on an unexpected token, premature end of input, an
// assignment to a non-assignable target, or tokens left over after a
// complete expression.
func ParseTokens(tokens []Token) (Node, error) {
	p := &parser{tokens: tokens}

	if len(tokens) == 0 {
		return newLiteral(0, Undefined), nil
	}

	n, err := p.assignment()
	if err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.unexpected("unexpected next token")
	}

	return n, nil
}

// ParseString tokenizes and parses source.
func ParseString(source string) (Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	return ParseTokens(tokens)
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() (Token, bool) {
	if p.eof() {
		return Token{}, false
	}

	return p.tokens[p.pos], true
}

// position returns the source offset of the next token, or the end of the
// last token at end of input.
func (p *parser) position() int {
	if t, ok := p.peek(); ok {
		return t.Pos
	}

	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]

		return last.Pos + len(last.Text)
	}

	return 0
}

// accept consumes the next token if it is one of the operators ops.
func (p *parser) accept(ops ...string) (Token, bool) {
	t, ok := p.peek()
	if !ok || !t.is(ops...) {
		return Token{}, false
	}

	p.pos++

	return t, true
}

func (p *parser) expect(op string) (Token, error) {
	if t, ok := p.accept(op); ok {
		return t, nil
	}

	return Token{}, p.unexpected("expected " + op)
}

func (p *parser) unexpected(detail string) error {
	t, ok := p.peek()
	if !ok {
		return ErrParse.Detail("unexpected end of expression").
			With(slog.Int("offset", p.position()), slog.String("want", detail))
	}

	return ErrParse.Detail(detail+", got "+t.Text).
		With(slog.Int("offset", t.Pos), slog.String("token", t.Text))
}

// assignment = equality [ "=" assignment ]
func (p *parser) assignment() (Node, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}

	eq, ok := p.accept("=")
	if !ok {
		return left, nil
	}

	switch left.(type) {
	case *IdentifierNode, *MemberNode:
	default:
		return nil, ErrParse.Detail("cannot assign to non-assignable expression").
			With(slog.Int("offset", eq.Pos))
	}

	right, err := p.assignment()
	if err != nil {
		return nil, err
	}

	return newAssign(eq.Pos, left, right), nil
}

// binary parses a left-associative chain of operand separated by ops.
func (p *parser) binary(operand func() (Node, error), ops ...string) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.accept(ops...)
		if !ok {
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = newBinary(op.Pos, op.Text, left, right)
	}
}

func (p *parser) equality() (Node, error) {
	return p.binary(p.relational, "==", "!=", "===", "!==")
}

func (p *parser) relational() (Node, error) {
	return p.binary(p.additive, "<", ">", "<=", ">=")
}

func (p *parser) additive() (Node, error) {
	return p.binary(p.multiplicative, "+", "-")
}

func (p *parser) multiplicative() (Node, error) {
	return p.binary(p.unary, "*", "/", "%")
}

// unary = ( "+" | "-" | "!" ) unary | postfix
func (p *parser) unary() (Node, error) {
	op, ok := p.accept("+", "-", "!")
	if !ok {
		return p.postfix()
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	return newUnary(op.Pos, op.Text, operand), nil
}

// postfix = primary { "." ident | "[" assignment "]" | "(" args ")" }
func (p *parser) postfix() (Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		t, ok := p.accept(".", "[", "(")
		if !ok {
			return n, nil
		}

		switch t.Text {
		case ".":
			name, ok := p.peek()
			if !ok || name.Kind != TokenIdentifier {
				return nil, p.unexpected("expected property name")
			}

			p.pos++
			n = newMember(t.Pos, n, newLiteral(name.Pos, name.Text), false)

		case "[":
			key, err := p.assignment()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect("]"); err != nil {
				return nil, err
			}

			n = newMember(t.Pos, n, key, true)

		case "(":
			args, err := parseList(p, ")", p.assignment)
			if err != nil {
				return nil, err
			}

			n = newCall(t.Pos, n, args)
		}
	}
}

// parseList parses comma-separated items up to and including closer. A trailing
// comma before closer is permitted.
func parseList[T any](p *parser, closer string, item func() (T, error)) ([]T, error) {
	var items []T

	for {
		if _, ok := p.accept(closer); ok {
			return items, nil
		}

		it, err := item()
		if err != nil {
			return nil, err
		}

		items = append(items, it)

		if _, ok := p.accept(","); !ok {
			if _, err := p.expect(closer); err != nil {
				return nil, err
			}

			return items, nil
		}
	}
}

var keywords = map[string]any{
	"true":  true,
	"false": false,
	"null":  nil,
}

// primary = "(" assignment ")" | array | object | literal | identifier
func (p *parser) primary() (Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.unexpected("expected expression")
	}

	switch t.Kind {
	case TokenNumber, TokenString:
		p.pos++

		return newLiteral(t.Pos, t.Value), nil

	case TokenIdentifier:
		p.pos++

		if v, ok := keywords[t.Text]; ok {
			return newLiteral(t.Pos, v), nil
		}

		return newIdentifier(t.Pos, t.Text), nil
	}

	switch {
	case t.is("("):
		p.pos++

		n, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(")"); err != nil {
			return nil, err
		}

		return n, nil

	case t.is("["):
		p.pos++

		elems, err := parseList(p, "]", p.assignment)
		if err != nil {
			return nil, err
		}

		return newArray(t.Pos, elems), nil

	case t.is("{"):
		p.pos++

		props, err := parseList(p, "}", p.property)
		if err != nil {
			return nil, err
		}

		return newObject(t.Pos, props), nil
	}

	return nil, p.unexpected("unexpected token")
}

// property = ( ident | string ) ":" assignment
func (p *parser) property() (Property, error) {
	t, ok := p.peek()
	if !ok || (t.Kind != TokenIdentifier && t.Kind != TokenString) {
		return Property{}, p.unexpected("expected property key")
	}

	p.pos++

	key := t.Text
	if t.Kind == TokenString {
		key, _ = t.Value.(string)
	}

	if _, err := p.expect(":"); err != nil {
		return Property{}, err
	}

	v, err := p.assignment()
	if err != nil {
		return Property{}, err
	}

	return Property{Key: key, Value: v}, nil
}
