package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text into tokens. It fails with an error wrapping
// [ErrLex] on an unrecognized character, a malformed number or an
// unterminated string.
func Tokenize(text string) ([]Token, error) {
	l := lexer{input: text}

	for {
		l.skipSpace()

		if l.eof() {
			return l.tokens, nil
		}

		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

type lexer struct {
	input  string
	pos    int
	tokens []Token
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) peek(offset int) byte {
	if i := l.pos + offset; i < len(l.input) {
		return l.input[i]
	}

	return 0
}

func (l *lexer) skipSpace() {
	for !l.eof() {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		l.pos += size
	}
}

func (l *lexer) emit(kind TokenKind, start int, value any) {
	l.tokens = append(l.tokens, Token{
		Text:  l.input[start:l.pos],
		Kind:  kind,
		Value: value,
		Pos:   start,
	})
}

func (l *lexer) fail(start int, detail string) error {
	return ErrLex.Detail(detail).With(
		slog.Int("offset", start),
		slog.String("text", l.input[start:min(l.pos+1, len(l.input))]),
	)
}

func (l *lexer) next() error {
	c := l.peek(0)

	switch {
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		return l.number()
	case c == '\'' || c == '"':
		return l.string(c)
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if isIdentStart(r) {
		l.identifier()

		return nil
	}

	for n := 3; n > 0; n-- {
		if l.pos+n > len(l.input) {
			continue
		}

		if _, ok := operators[n][l.input[l.pos:l.pos+n]]; ok {
			start := l.pos
			l.pos += n
			l.emit(TokenOperator, start, nil)

			return nil
		}
	}

	start := l.pos
	l.pos += size - 1

	return l.fail(start, "unexpected character "+strconv.QuoteRune(r))
}

// number scans digits, an optional fraction and an optional exponent. An
// exponent marker must be followed by digits, optionally signed.
func (l *lexer) number() error {
	start := l.pos

	l.digits()

	if l.peek(0) == '.' {
		l.pos++
		l.digits()
	}

	if c := l.peek(0); c == 'e' || c == 'E' {
		next := l.peek(1)

		switch {
		case isDigit(next):
			l.pos++
			l.digits()
		case next == '+' || next == '-':
			l.pos += 2
			if !isDigit(l.peek(0)) {
				l.pos = min(l.pos, len(l.input)-1)

				return l.fail(start, "invalid exponent")
			}

			l.digits()
		default:
			l.pos = min(l.pos+1, len(l.input)-1)

			return l.fail(start, "invalid exponent")
		}
	}

	f, err := strconv.ParseFloat(l.input[start:l.pos], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return ErrLex.Wrap(err).With(slog.Int("offset", start))
	}

	l.emit(TokenNumber, start, f)

	return nil
}

func (l *lexer) digits() {
	for isDigit(l.peek(0)) {
		l.pos++
	}
}

func (l *lexer) string(quote byte) error {
	start := l.pos
	l.pos++

	var b strings.Builder

	for !l.eof() {
		c := l.input[l.pos]

		switch {
		case c == quote:
			l.pos++
			l.emit(TokenString, start, b.String())

			return nil

		case c == '\\':
			l.pos++
			if l.eof() {
				break
			}

			if err := l.escape(&b, start); err != nil {
				return err
			}

		default:
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			b.WriteRune(r)
			l.pos += size
		}
	}

	l.pos = len(l.input) - 1

	return l.fail(start, "unterminated string")
}

var escapes = map[byte]byte{
	'n': '\n', 'r': '\r', 't': '\t', 'f': '\f', 'v': '\v',
}

// escape decodes the escape sequence following a backslash.
func (l *lexer) escape(b *strings.Builder, start int) error {
	c := l.input[l.pos]

	if c == 'u' {
		hex := l.input[l.pos+1 : min(l.pos+5, len(l.input))]
		if len(hex) < 4 {
			return l.fail(start, "invalid unicode escape \\u"+hex)
		}

		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return l.fail(start, "invalid unicode escape \\u"+hex)
		}

		b.WriteRune(rune(n))
		l.pos += 5

		return nil
	}

	if e, ok := escapes[c]; ok {
		b.WriteByte(e)
		l.pos++

		return nil
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	b.WriteRune(r)
	l.pos += size

	return nil
}

func (l *lexer) identifier() {
	start := l.pos

	for !l.eof() {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentPart(r) {
			break
		}

		l.pos += size
	}

	l.emit(TokenIdentifier, start, nil)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
