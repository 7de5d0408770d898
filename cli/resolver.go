package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/bind/pkg"
)

// resolve is a [kong.ConfigurationLoader] for the YAML configuration file
// written by the init command.
//
// The file is a flat mapping of flag names to values:
//
//	log-level: debug
//	log_format: text
//	scope:
//	  - data.yaml
//
// Keys may use hyphens, as kong names flags, or underscores. Numbers are
// passed to kong as strings for it to parse. Command-line flags override
// values from the file.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, pkg.ErrInvalidFormat.Wrap(err)
	}

	cfg := make(config, len(raw))

	for key, value := range raw {
		cfg[strings.ReplaceAll(key, "_", "-")] = flagValue(value)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. It returns nil for flags the file does
// not set, which lets kong apply defaults.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[strings.ReplaceAll(flag.Name, "_", "-")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}

func flagValue(v any) any {
	switch v := v.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	}

	return v
}
