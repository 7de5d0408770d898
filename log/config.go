package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout used when none is configured.
const DefaultTimeLayout = time.RFC3339

// config is immutable once a Logger is built; options return modified copies.
type config struct {
	output     io.Writer
	formatTime func(time.Time) string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option modifies a logger configuration.
type Option func(config) config

func makeConfig(w io.Writer, opts ...Option) config {
	return config{
		output:     w,
		formatTime: makeFormatTime(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
	}.apply(append([]Option{WithOutput(w)}, opts...)...)
}

func (c config) apply(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

func (c config) handlerOptions() *slog.HandlerOptions {
	formatTime := c.formatTime

	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					s := formatTime(t)
					if s == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(s)
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.pretty:
		return newPrettyHandler(c.output, opts, c.formatTime)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.DiscardHandler
	}
}

// WithOutput sets the destination writer. A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel sets the minimum level of emitted messages.
func WithLevel(level Level) Option {
	return func(c config) config { c.level = level; return c }
}

// WithFormat sets the output encoding.
func WithFormat(format Format) Option {
	return func(c config) config { c.format = format; return c }
}

// WithCaller controls whether the source location is attached to records.
func WithCaller(enable bool) Option {
	return func(c config) config { c.caller = enable; return c }
}

// WithPretty enables the colorized single-line text handler. It takes
// precedence over the configured format.
func WithPretty(enable bool) Option {
	return func(c config) config { c.pretty = enable; return c }
}

// WithTimeLayout sets the timestamp layout. Named layouts from [time]
// ("RFC3339", "Kitchen", "StampMilli", ...) are recognized case-insensitively;
// anything else is passed to [time.Time.Format] verbatim. An empty layout or
// "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTime(layout)

		return c
	}
}

var namedLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rfc822":      time.RFC822,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"datetime":    time.DateTime,
	"none":        "",
}

func makeFormatTime(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := namedLayout[key]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
