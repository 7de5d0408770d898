package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/log"
	"github.com/ardnew/bind/pkg"
	"github.com/ardnew/bind/scope"
)

// Run executes a watch script: it registers the script's watches on a scope
// seeded with the -s data and the script's own scope, runs a digest, then
// applies each step in order. Every listener firing is printed.
//
// A script is a YAML (or JSON) document:
//
//	scope:
//	  user: {name: ada}
//	  renames: 0
//	watches:
//	  - expr: user.name
//	    listener: renames = renames + 1
//	  - expr: user
//	    deep: true
//	steps:
//	  - user.name = "grace"
//
// Listener expressions are evaluated against the scope with the locals
// newValue and oldValue.
type Run struct {
	Script   string `arg:"" help:"Watch script file or '-' for stdin" name:"script"`
	TTL      int    `default:"${ttl}" help:"Maximum dirty passes per digest; zero or less uses the default"`
	Snapshot string `help:"Write the final scope data as CBOR to this file" placeholder:"FILE" type:"path"`
	ExprLang bool   `help:"Compile watch expressions as expr-lang programs" name:"exprlang" short:"x"`
	Quiet    bool   `help:"Do not print listener firings" short:"q"`

	out io.Writer
}

// script is the decoded form of a watch script.
type script struct {
	Scope   map[string]any `yaml:"scope"`
	Watches []watchSpec    `yaml:"watches"`
	Steps   []string       `yaml:"steps"`
}

type watchSpec struct {
	Expr     string `yaml:"expr"`
	Listener string `yaml:"listener"`
	Deep     bool   `yaml:"deep"`
}

// parseScript decodes and validates a watch script.
func parseScript(data []byte, name string) (*script, error) {
	var sc script

	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, pkg.ErrScript.Wrapf("%s", name).Wrap(err)
	}

	for i, w := range sc.Watches {
		if strings.TrimSpace(w.Expr) == "" {
			return nil, pkg.ErrScript.Wrapf("%s: watch %d has no expr", name, i)
		}
	}

	return &sc, nil
}

// runner carries the state of one script execution.
type runner struct {
	w     io.Writer
	quiet bool
	err   *lang.Error // first listener failure
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	raw, path, err := readFile(r.Script)
	if err != nil {
		return err
	}

	sc, err := parseScript(raw, path)
	if err != nil {
		return err
	}

	data, err := loadScope(ctx)
	if err != nil {
		return err
	}

	if m, ok := normalize(sc.Scope).(lang.Map); ok {
		maps.Copy(data, m)
	}

	run := &runner{w: stdout(r.out), quiet: r.Quiet}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = scope.DefaultTTL
	}

	s := scope.New(
		scope.WithData(data),
		scope.WithTTL(ttl),
		scope.WithLogger(log.Default()),
	)

	for i, spec := range sc.Watches {
		if err := run.watch(s, spec, r.ExprLang); err != nil {
			return err.With(slog.Int("watch", i))
		}
	}

	log.DebugContext(ctx, "script loaded",
		slog.String("script", path),
		slog.Int("watches", s.Watchers()),
		slog.Int("steps", len(sc.Steps)),
	)

	run.printf("digest\n")

	if err := run.check(s.Digest()); err != nil {
		return err
	}

	for i, step := range sc.Steps {
		run.printf("step %d: %s\n", i+1, step)

		fn, err := lang.Parse(step, lang.WithLogger(log.Default()))
		if err != nil {
			return ErrStep.Wrap(err).With(slog.Int("step", i+1), slog.String("expr", step))
		}

		if _, err := s.Apply(fn); err != nil {
			return ErrStep.Wrap(err).With(slog.Int("step", i+1), slog.String("expr", step))
		}

		if err := run.check(nil); err != nil {
			return err.With(slog.Int("step", i+1))
		}
	}

	if r.Snapshot != "" {
		return writeSnapshot(r.Snapshot, s.Data())
	}

	return nil
}

// watch registers spec on s. The listener prints each firing and then
// evaluates the spec's listener expression, if any.
func (run *runner) watch(s *scope.Scope, spec watchSpec, exprLang bool) *lang.Error {
	fn, err := compile(spec.Expr, exprLang)
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("expr", spec.Expr))
	}

	var action lang.Evaluator

	if spec.Listener != "" {
		if action, err = lang.Parse(spec.Listener, lang.WithLogger(log.Default())); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("listener", spec.Listener))
		}
	}

	s.Watch(fn, func(newValue, oldValue any, s *scope.Scope) {
		run.printf("  %s: %s -> %s\n", spec.Expr, lang.Inspect(oldValue), lang.Inspect(newValue))

		if action == nil || run.err != nil {
			return
		}

		locals := lang.Map{"newValue": newValue, "oldValue": oldValue}
		if _, err := s.Eval(action, locals); err != nil {
			run.err = ErrWatch.Wrap(err).With(slog.String("listener", spec.Listener))
		}
	}, spec.Deep)

	return nil
}

// check returns the digest error, or else the first listener failure.
func (run *runner) check(err error) *lang.Error {
	if err != nil {
		return ErrWatch.Wrap(err)
	}

	return run.err
}

func (run *runner) printf(format string, args ...any) {
	if !run.quiet {
		fmt.Fprintf(run.w, format, args...)
	}
}

func writeSnapshot(path string, data lang.Map) error {
	file, err := os.Create(path)
	if err != nil {
		return pkg.ErrEncodeScope.Wrap(err)
	}

	if err := encodeSnapshot(file, data); err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return pkg.ErrEncodeScope.Wrap(err)
	}

	log.Debug("wrote snapshot", attrFile(path), slog.Int("keys", len(data)))

	return nil
}
