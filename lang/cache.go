package lang

import (
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"
)

// exprCache maps the xxh3 hash of source text to a *cacheEntry.
var exprCache sync.Map

type cacheEntry struct {
	once   sync.Once
	source string
	expr   *Expr
	err    error
}

// parseCached compiles source at most once per distinct text. Concurrent
// callers for the same source wait on the first compilation.
func parseCached(source string, o options) (*Expr, error) {
	key := xxh3.HashString(source)

	v, loaded := exprCache.LoadOrStore(key, &cacheEntry{source: source})
	entry, _ := v.(*cacheEntry)

	if entry.source != source {
		o.logger.Debug("cache collision",
			slog.String("source", source),
			slog.String("cached", entry.source),
		)

		return compileSource(source, o)
	}

	o.logger.Trace("cache lookup",
		slog.String("source", source),
		slog.Bool("hit", loaded),
	)

	entry.once.Do(func() {
		entry.expr, entry.err = compileSource(source, o)
	})

	return entry.expr, entry.err
}

// ClearCache discards every cached expression.
func ClearCache() {
	exprCache.Clear()
}
