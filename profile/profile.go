package profile

import (
	"iter"
	"maps"
	"slices"
)

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Config functions return all supported pprof configuration parameters.
type Config func() (mode, path string, quiet bool)

// Option transforms a Config.
type Option func(Config) Config

// Make returns a Config with an empty mode, path and quiet unset, then
// applies opts in order.
func Make(opts ...Option) Config {
	c := Config(func() (string, string, bool) { return "", "", false })

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start initializes the profiler and returns an interface for stopping it.
//
// If the binary was built without the pprof tag, or the mode is empty or
// unknown, Start returns a no-op. Both Start and Stop are always safely
// callable.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// Modes returns the sorted names of the supported profiling modes. It is
// empty unless built with the pprof tag.
func Modes() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(mode)))
}

// WithMode returns an option setting a profiler's mode.
func WithMode(mode string) Option {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath returns an option setting a profiler's output directory.
func WithPath(path string) Option {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet returns an option setting whether the profiler logs when it
// starts and stops.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
