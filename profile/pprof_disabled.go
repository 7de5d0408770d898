//go:build !pprof

package profile

var mode = map[string]struct{}{}

func start(string, string, bool) interface{ Stop() } { return ignore{} }
