package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/lang/exprlang"
	"github.com/ardnew/bind/log"
	"github.com/ardnew/bind/pkg"
)

// Output formats of evaluated values.
const (
	formatNative = "native"
	formatJSON   = "json"
	formatYAML   = "yaml"
)

// writeValue writes v to w on its own line. The native format is expression
// literal syntax; json and yaml encode the value with functions and
// undefined members dropped.
func writeValue(w io.Writer, v any, format string) error {
	var out string

	switch format {
	case formatNative, "":
		out = lang.Inspect(v)
	case formatJSON, formatYAML:
		if lang.IsUndefined(v) {
			v = nil
		}

		var opts []yaml.EncodeOption
		if format == formatJSON {
			opts = append(opts, yaml.JSON())
		}

		data, err := yaml.MarshalWithOptions(plain(v), opts...)
		if err != nil {
			return err
		}

		out = strings.TrimRight(string(data), "\n")
	default:
		return pkg.ErrInvalidFormat.Wrapf("output format %q", format)
	}

	_, err := fmt.Fprintln(w, out)

	return err
}

// stdout returns w, or os.Stdout when w is nil.
func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}

// compile returns an evaluator for src, parsed as an expression or, when
// exprLang is set, compiled as an expr-lang program.
func compile(src string, exprLang bool) (lang.Evaluator, error) {
	if exprLang {
		return exprlang.Compile(src)
	}

	return lang.Parse(src, lang.WithLogger(log.Default()))
}
