package scope

import (
	"log/slog"

	"github.com/ardnew/bind/log"
)

// DefaultTTL is the number of extra passes a digest may run before it is
// considered non-terminating.
const DefaultTTL = 10

// ExceptionHandler receives failures that must not interrupt a digest, such
// as errors and panics from async tasks and post-digest callbacks.
type ExceptionHandler func(err error)

// Option configures a [Scope].
type Option func(*Scope)

// WithTTL sets the digest ttl. Negative values are treated as zero.
func WithTTL(ttl int) Option {
	return func(s *Scope) { s.ttl = max(ttl, 0) }
}

// WithShortCircuit controls whether a digest pass stops early once the last
// watcher found dirty is confirmed clean. It is enabled by default.
// Disabling it makes every pass evaluate every watcher.
func WithShortCircuit(enable bool) Option {
	return func(s *Scope) { s.shortCircuit = enable }
}

// WithLogger sets the logger used for digest tracing and for the default
// exception handler.
func WithLogger(logger log.Logger) Option {
	return func(s *Scope) { s.logger = logger }
}

// WithExceptionHandler replaces the default exception handler, which logs
// each failure at error level.
func WithExceptionHandler(fn ExceptionHandler) Option {
	return func(s *Scope) { s.handler = fn }
}

// WithHost sets the host used to schedule digests for async work.
func WithHost(host Host) Option {
	return func(s *Scope) { s.host = host }
}

// WithData seeds the scope with the entries of data.
func WithData(data map[string]any) Option {
	return func(s *Scope) {
		for k, v := range data {
			s.data[k] = v
		}
	}
}

func (s *Scope) logError(err error) {
	logger := s.logger
	if logger.Logger == nil {
		logger = log.Default()
	}

	logger.Error("scope exception",
		slog.String("scope", s.id.String()),
		slog.Any("error", err),
	)
}
