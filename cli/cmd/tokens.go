package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/pkg"
)

// Tokens prints the lexical tokens of an expression.
type Tokens struct {
	Expr   string `arg:"" help:"Expression to tokenize" name:"expr"`
	Format string `default:"native" enum:"native,json,yaml" help:"Output format (${enum})" short:"o"`

	out io.Writer
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tokens, err := lang.Tokenize(t.Expr)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "tokens"))
	}

	w := stdout(t.out)

	switch t.Format {
	case formatJSON, formatYAML:
		var opts []yaml.EncodeOption
		if t.Format == formatJSON {
			opts = append(opts, yaml.JSON())
		}

		data, err := yaml.MarshalWithOptions(tokens, opts...)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))

		return err
	case formatNative, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

		for _, tok := range tokens {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", tok.Pos, tok.Kind, tok.Text)
		}

		return tw.Flush()
	}

	return pkg.ErrInvalidFormat.Wrapf("output format %q", t.Format)
}
