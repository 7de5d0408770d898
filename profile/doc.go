// Package profile provides optional runtime profiling for the bind command.
//
// Profiling wraps [github.com/pkg/profile] and must be enabled at build time
// with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op.
//
// # Modes
//
// With the tag, the supported modes are allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread and trace. Use [Modes] to list them.
//
// # Usage
//
//	p := profile.Make(
//	    profile.WithMode("cpu"),
//	    profile.WithPath("/tmp/profiles"),
//	)
//	defer p.Start().Stop()
//
// Profile files are named for their mode (cpu.pprof, mem.pprof) and written
// to the configured directory. The bind command writes to the pprof
// directory under its cache directory by default:
//
//	bind --pprof-mode=cpu run script.yaml
//	go tool pprof -http=: ~/.cache/bind/pprof/cpu.pprof
//
// Digest loops with many watchers are the usual subject. Compare two runs
// with:
//
//	go tool pprof -base=old.pprof new.pprof
package profile
