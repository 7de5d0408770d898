package lang

import "github.com/ardnew/bind/log"

type options struct {
	logger log.Logger
	guards sandbox
	custom bool // guards differ from DefaultGuards
	cached bool
}

// Option configures [Parse] and [Compile].
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{guards: DefaultGuards(), cached: true}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger used to trace lexing, parsing and cache
// activity.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGuards replaces the forbidden-value predicates applied while
// evaluating. Pass no guards to disable value checks; forbidden property
// names are always rejected.
func WithGuards(guards ...Guard) Option {
	return func(o *options) {
		o.guards = guards
		o.custom = true
	}
}

// WithCache controls whether [Parse] consults and populates the shared
// parse cache. Expressions built with custom guards are never cached.
func WithCache(enable bool) Option {
	return func(o *options) { o.cached = enable }
}
