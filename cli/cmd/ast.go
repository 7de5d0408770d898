package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/bind/lang"
)

// AST prints the syntax tree of an expression in the chosen format.
type AST struct {
	Native Native `cmd:"" default:"withargs" help:"Print canonical expression source (default)."`
	JSON   JSON   `cmd:""                    help:"Print the tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the tree as YAML."`
}

// parseNode parses src and tags errors with the requested format.
func parseNode(src, format string) (lang.Node, error) {
	node, err := lang.ParseString(src)
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("command", "ast"),
			slog.String("format", format),
		)
	}

	return node, nil
}

// Native prints the canonical source of an expression along with its
// constant and literal flags.
type Native struct {
	Flags bool `help:"Also print the constant and literal flags" negatable:"" default:"true"`

	Expr string `arg:"" help:"Expression to parse" name:"expr"`

	out io.Writer
}

// Run executes the ast native command.
func (n *Native) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	node, err := parseNode(n.Expr, formatNative)
	if err != nil {
		return err
	}

	w := stdout(n.out)

	if _, err := fmt.Fprintln(w, lang.Format(node)); err != nil {
		return err
	}

	if n.Flags {
		_, err = fmt.Fprintf(w, "constant=%t literal=%t\n", node.IsConstant(), node.IsLiteral())
	}

	return err
}

// JSON prints the syntax tree of an expression as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Expr string `arg:"" help:"Expression to parse" name:"expr"`

	out io.Writer
}

// Run executes the ast json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	node, err := parseNode(j.Expr, formatJSON)
	if err != nil {
		return err
	}

	return lang.FormatJSON(ctx, stdout(j.out), node, j.Indent)
}

// YAML prints the syntax tree of an expression as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Expr string `arg:"" help:"Expression to parse" name:"expr"`

	out io.Writer
}

// Run executes the ast yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	node, err := parseNode(y.Expr, formatYAML)
	if err != nil {
		return err
	}

	return lang.FormatYAML(ctx, stdout(y.out), node, y.Indent)
}
