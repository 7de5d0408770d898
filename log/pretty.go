package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleString  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleNumber  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTrue    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleTime    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleMessage = lipgloss.NewStyle().Bold(true)

	styleLevel = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes one colorized line per record:
//
//	15:04:05 INFO message key=value group.key=value
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime func(time.Time) string
	mu         *sync.Mutex
	w          io.Writer
	prefix     string
	attrs      []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime func(time.Time) string,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			buf.WriteString(styleTime.Render(s))
			buf.WriteByte(' ')
		}
	}

	level := Level(r.Level)
	name := strings.ToUpper(level.String())

	if style, ok := styleLevel[level]; ok {
		name = style.Render(name)
	}

	buf.WriteString(name)
	buf.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteString(styleKey.Render(fmt.Sprintf("%s:%d", src.File, src.Line)))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(styleMessage.Render(r.Message))

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, group, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(styleKey.Render(prefix + a.Key + "="))
	buf.WriteString(renderValue(a.Value))
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return styleString.Render(v.String())
	case slog.KindInt64:
		return styleNumber.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return styleNumber.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return styleNumber.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return styleTrue.Render("true")
		}

		return styleFalse.Render("false")
	case slog.KindDuration:
		return styleNumber.Render(v.Duration().String())
	case slog.KindTime:
		return styleTime.Render(v.Time().Format(time.RFC3339))
	default:
		return styleString.Render(v.String())
	}
}
