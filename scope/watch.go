package scope

import (
	"log/slog"
	"slices"

	"github.com/ardnew/bind/lang"
)

// Listener is called when a watched value changes. On the first change
// oldValue equals newValue.
type Listener func(newValue, oldValue any, s *Scope)

// Deregister removes a watcher. Calling it more than once has no effect.
type Deregister func()

// unset marks a watcher that has never been evaluated.
type unset struct{}

type watcher struct {
	fn       lang.Evaluator
	listener Listener
	deep     bool
	last     any
	source   string
}

// Watch registers fn to be evaluated on every digest pass. listener is
// called whenever the result differs from the previous one. With
// valueEquality, results are compared structurally and the previous value
// is kept as a deep copy; otherwise they are compared with strict equality.
// NaN is equal to NaN in both modes.
//
// Watch may be called from a listener while a digest is running; the new
// watcher is evaluated before the digest settles.
func (s *Scope) Watch(fn lang.Evaluator, listener Listener, valueEquality bool) Deregister {
	if fn == nil {
		fn = lang.Noop
	}

	if listener == nil {
		listener = func(any, any, *Scope) {}
	}

	w := &watcher{
		fn:       fn,
		listener: listener,
		deep:     valueEquality,
		last:     unset{},
		source:   describe(fn),
	}

	s.watchers = slices.Insert(s.watchers, 0, w)
	if s.cursor >= 0 {
		s.cursor++
	}

	s.lastDirty = nil

	s.logger.Trace("watch",
		slog.String("source", w.source),
		slog.Bool("deep", valueEquality),
		slog.Int("watchers", len(s.watchers)),
	)

	return func() { s.unwatch(w) }
}

// WatchExpr parses src and watches it like Watch.
func (s *Scope) WatchExpr(src string, listener Listener, valueEquality bool) (Deregister, error) {
	fn, err := lang.Parse(src, lang.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return s.Watch(fn, listener, valueEquality), nil
}

// Watchers returns the number of registered watchers.
func (s *Scope) Watchers() int { return len(s.watchers) }

func (s *Scope) unwatch(w *watcher) {
	i := slices.Index(s.watchers, w)
	if i < 0 {
		return
	}

	s.watchers = slices.Delete(s.watchers, i, i+1)

	// Entries below the cursor have not been scanned yet.
	if i < s.cursor {
		s.cursor--
	}

	s.lastDirty = nil

	s.logger.Trace("unwatch",
		slog.String("source", w.source),
		slog.Int("watchers", len(s.watchers)),
	)
}

func describe(fn lang.Evaluator) string {
	if str, ok := fn.(interface{ String() string }); ok {
		return str.String()
	}

	return "<func>"
}
