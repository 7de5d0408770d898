package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/bind/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "watch", "watches", "unwatch", "digest", "async", "clear", "quit",
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes: whitespace, the member-access dot, and operator or punctuation
// characters of the expression language.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word that
// starts at wordStart. For input "x + user.address.ci" with the word "ci",
// the parent path is "user.address". It returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ". \t")
}

// resolve walks the dotted path from the scope data and returns the value
// found there, or [lang.Undefined].
func resolve(data lang.Object, path string) any {
	var v any = data

	for seg := range strings.SplitSeq(path, ".") {
		if seg == "" {
			continue
		}

		v = lang.Get(v, seg)
		if lang.IsUndefined(v) {
			break
		}
	}

	return v
}

// childCandidates returns the names that complete a word under parent. At
// the top level these are the scope keys, plus the expr-lang builtins when
// exprLang is set. Under a parent they are the keys of the object the
// parent path resolves to.
func childCandidates(data lang.Object, parent string, exprLang bool) []string {
	if parent == "" {
		names := data.Keys()

		if exprLang {
			for _, fn := range builtin.Builtins {
				names = append(names, fn.Name)
			}
		}

		return names
	}

	obj, ok := lang.AsObject(resolve(data, parent))
	if !ok {
		return nil
	}

	return obj.Keys()
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries. An empty top-level word has no matches; an empty
// word after a dot matches every member of the parent.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" || strings.Contains(input[:wordStart], " ") {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	_, exprLang := cutExprLang(input)
	parent := parentPath(input, wordStart)
	candidates = childCandidates(m.scope, parent, exprLang)

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. Matched characters are highlighted and the candidate
// selected while tab-cycling uses the selected style.
func renderCandidateBar(
	m model,
	width int,
) string {
	if len(m.matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	limit := width - lipgloss.Width(ellipsis) - lipgloss.Width(sep)

	var b strings.Builder

	for i, match := range m.matches {
		rendered := renderCandidate(match, m.tabActive && i == m.suggIdx, m.isFunction(match.Str))

		if i > 0 {
			if lipgloss.Width(b.String())+lipgloss.Width(sep+rendered) > limit {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name, completed under the current parent path,
// names a callable: a function value in the scope or an expr-lang builtin.
func (m model) isFunction(name string) bool {
	input := m.input.Value()
	parent := parentPath(input, m.wordStart)

	if parent == "" {
		if _, exprLang := cutExprLang(input); exprLang {
			if _, ok := builtin.Index[name]; ok {
				return true
			}
		}
	}

	return lang.TypeOf(lang.Get(resolve(m.scope, parent), name)) == "function"
}

// preview renders a short form of v for the list command.
func preview(v any) string {
	const limit = 48

	s := lang.Inspect(v)
	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit-3]) + "..."
	}

	return s
}
