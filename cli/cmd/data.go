package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/pkg"
)

// decoder decodes a complete scope data document.
type decoder func(r io.Reader) (any, error)

var decoders = map[string]decoder{
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".json": decodeYAML,
	".toml": decodeTOML,
	".cbor": decodeCBOR,
}

// Extensions lists the scope data file extensions understood by the -s flag.
func Extensions() []string {
	return []string{".yaml", ".yml", ".json", ".toml", ".cbor"}
}

func decodeYAML(r io.Reader) (any, error) {
	var v any

	err := yaml.NewDecoder(r).Decode(&v)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}

	return v, err
}

func decodeTOML(r io.Reader) (any, error) {
	v := map[string]any{}

	_, err := toml.NewDecoder(r).Decode(&v)

	return v, err
}

//nolint:gochecknoglobals
var cborDecMode, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

func decodeCBOR(r io.Reader) (any, error) {
	var v any

	err := cborDecMode.NewDecoder(r).Decode(&v)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}

	return v, err
}

// decodeScope decodes r with the decoder registered for ext and converts the
// result to the expression value model. The top level must be a mapping.
func decodeScope(r io.Reader, ext, name string) (lang.Map, error) {
	dec, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, pkg.ErrInvalidFormat.Wrapf("%s: unknown extension %q", name, ext)
	}

	v, err := dec(r)
	if err != nil {
		return nil, pkg.ErrDecodeScope.Wrapf("%s", name).Wrap(err)
	}

	m, ok := normalize(v).(lang.Map)
	if !ok {
		return nil, pkg.ErrDecodeScope.Wrapf("%s: top level is %s, not a mapping",
			name, lang.TypeOf(normalize(v)))
	}

	return m, nil
}

// normalize converts decoded data to the expression value model: every
// number becomes float64, every mapping a [lang.Map] and every sequence a
// []any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(lang.Map, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}

		return m
	case map[any]any:
		m := make(lang.Map, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}

		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}

		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}

		return out
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}

	return v
}

// encodeSnapshot writes data to w as CBOR.
func encodeSnapshot(w io.Writer, data lang.Map) error {
	if err := cbor.NewEncoder(w).Encode(plain(data)); err != nil {
		return pkg.ErrEncodeScope.Wrap(err)
	}

	return nil
}

// plain converts the expression value model back to encodable Go values.
// Functions and Undefined are dropped.
func plain(v any) any {
	switch t := v.(type) {
	case lang.Map:
		m := make(map[string]any, len(t))
		for k, e := range t {
			if keep(e) {
				m[k] = plain(e)
			}
		}

		return m
	case map[string]any:
		return plain(lang.Map(t))
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if keep(e) {
				out = append(out, plain(e))
			} else {
				out = append(out, nil)
			}
		}

		return out
	}

	return v
}

func keep(v any) bool {
	return !lang.IsUndefined(v) && lang.TypeOf(v) != "function"
}

// attrFile is the slog attribute naming an input file.
func attrFile(path string) slog.Attr { return slog.String("file", path) }
