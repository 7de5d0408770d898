package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/log"
	"github.com/ardnew/bind/scope"
)

// Eval evaluates expressions against the scope data and prints each result.
type Eval struct {
	Exprs    []string `arg:"" help:"Expressions to evaluate in order"       name:"expr"`
	Format   string   `default:"native" enum:"native,json,yaml" help:"Output format (${enum})" short:"o"`
	ExprLang bool     `help:"Compile expressions as expr-lang programs" name:"exprlang" short:"x"`

	out io.Writer
}

// Run executes the eval command.
//
// Each expression is applied to one shared scope, so assignments made by an
// expression are visible to those after it.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := loadScope(ctx)
	if err != nil {
		return err
	}

	s := scope.New(scope.WithData(data), scope.WithLogger(log.Default()))

	for _, src := range e.Exprs {
		fn, err := compile(src, e.ExprLang)
		if err != nil {
			return ErrEval.Wrap(err).With(slog.String("expr", src))
		}

		v, err := s.Apply(fn)
		if err != nil {
			return ErrEval.Wrap(err).With(slog.String("expr", src))
		}

		log.TraceContext(ctx, "evaluated",
			slog.String("expr", src),
			slog.String("type", lang.TypeOf(v)),
		)

		if err := writeValue(stdout(e.out), v, e.Format); err != nil {
			return err
		}
	}

	return nil
}
