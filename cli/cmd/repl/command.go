package repl

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/lang/exprlang"
	"github.com/ardnew/bind/log"
	"github.com/ardnew/bind/scope"
)

// exprLangPrefix marks input evaluated as an expr-lang program.
const exprLangPrefix = ":x "

// cutExprLang strips the expr-lang prefix from input and reports whether it
// was present.
func cutExprLang(input string) (string, bool) {
	return strings.CutPrefix(strings.TrimLeft(input, " \t"), exprLangPrefix)
}

// compile returns an evaluator for input.
func compile(input string, logger log.Logger) (lang.Evaluator, error) {
	if src, ok := cutExprLang(input); ok {
		return exprlang.Compile(src)
	}

	return lang.Parse(input, lang.WithLogger(logger))
}

type watchEntry struct {
	id    int
	expr  string
	deep  bool
	dereg scope.Deregister
}

// session is the state shared by every copy of the model: the scope, its
// watches, and output produced by listeners and the exception handler while
// a message is handled.
type session struct {
	scope   *scope.Scope
	logger  log.Logger
	watches []watchEntry
	nextID  int
	out     []string
}

func newSession(data map[string]any, h scope.Host, logger log.Logger) *session {
	sess := &session{logger: logger}

	sess.scope = scope.New(
		scope.WithData(data),
		scope.WithHost(h),
		scope.WithLogger(logger),
		scope.WithExceptionHandler(func(err error) {
			sess.printf(errorStyle, "error: %v", err)
		}),
	)

	return sess
}

func (s *session) printf(style lipgloss.Style, format string, args ...any) {
	s.out = append(s.out, style.Render(fmt.Sprintf(format, args...)))
}

// flush returns a command printing the buffered output, or nil.
func (s *session) flush() tea.Cmd {
	if len(s.out) == 0 {
		return nil
	}

	text := strings.Join(s.out, "\n")
	s.out = nil

	return tea.Println(text)
}

// watch registers expr and prints each change it reports.
func (s *session) watch(expr string, deep bool) (int, error) {
	fn, err := compile(expr, s.logger)
	if err != nil {
		return 0, err
	}

	s.nextID++
	id := s.nextID

	dereg := s.scope.Watch(fn, func(newValue, oldValue any, _ *scope.Scope) {
		s.printf(changeStyle, "[%d] %s: %s -> %s",
			id, expr, lang.Inspect(oldValue), lang.Inspect(newValue))
	}, deep)

	s.watches = append(s.watches, watchEntry{id: id, expr: expr, deep: deep, dereg: dereg})

	return id, nil
}

func (s *session) unwatch(id int) error {
	for i, w := range s.watches {
		if w.id == id {
			w.dereg()
			s.watches = append(s.watches[:i], s.watches[i+1:]...)

			return nil
		}
	}

	return ErrNoWatch.With(slog.Int("id", id))
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	refreshMatches(&m, false)

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "repl history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echoCmd := tea.Println(echo(input, modeEval))

	result, err := m.evaluate(input)

	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl eval result",
			slog.String("result_type", "error"),
			slog.String("error", err.Error()),
		)

		m.sess.printf(errorStyle, "error: %v", err)

		return m, tea.Sequence(echoCmd, m.sess.flush())
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval result",
		slog.String("result_type", lang.TypeOf(result)),
	)

	m.sess.printf(resultStyle, "%s", lang.Inspect(result))

	return m, tea.Sequence(echoCmd, m.sess.flush())
}

// evaluate applies input to the scope, which runs a digest afterward.
func (m model) evaluate(input string) (any, error) {
	fn, err := compile(input, m.logger)
	if err != nil {
		return nil, err
	}

	return m.sess.scope.Apply(fn)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	echoCmd := tea.Println(echo(input, modeCtrl))

	m.logger.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", name),
		slog.String("args", args),
	)

	var err error

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		m.sess.printf(hintStyle, "%s", helpMessage())

	case "l", "list":
		m.list()

	case "w", "watch":
		err = m.addWatch(args)

	case "watches":
		for _, w := range m.sess.watches {
			m.sess.printf(hintStyle, "  [%d] %s (deep=%t)", w.id, w.expr, w.deep)
		}

	case "unwatch":
		var id int

		if id, err = strconv.Atoi(args); err != nil {
			err = ErrUsage.Detail("unwatch ID")
		} else {
			err = m.sess.unwatch(id)
		}

	case "d", "digest":
		err = m.sess.scope.Digest()

	case "async":
		var fn lang.Evaluator

		if fn, err = compile(args, m.logger); err == nil {
			m.sess.scope.EvalAsync(fn)
			m.sess.printf(hintStyle, "queued")
		}

	case "c", "clear":
		return m, tea.Sequence(tea.ClearScreen, echoCmd)

	default:
		m.sess.printf(errorStyle, "Unknown command: %s (try 'help')", name)
	}

	if err != nil {
		m.sess.printf(errorStyle, "error: %v", err)
	}

	return m, tea.Sequence(echoCmd, m.sess.flush())
}

func (m model) addWatch(args string) error {
	deep := false

	if rest, ok := strings.CutPrefix(args, "-d "); ok {
		deep, args = true, strings.TrimSpace(rest)
	}

	if args == "" {
		return ErrUsage.Detail("watch [-d] EXPR")
	}

	id, err := m.sess.watch(args, deep)
	if err != nil {
		return err
	}

	m.sess.printf(hintStyle, "watch %d registered; it fires on the next digest", id)

	return nil
}

func (m model) list() {
	keys := m.scope.Keys()
	if len(keys) == 0 {
		m.sess.printf(hintStyle, "  (empty scope)")

		return
	}

	for _, k := range keys {
		v, _ := m.scope.Get(k)
		m.sess.out = append(m.sess.out, fmt.Sprintf("  %s %s", k, hintStyle.Render(preview(v))))
	}
}
