// Package cli contains the command line interface for bind.
//
// # Usage
//
//	bind [flags] [eval] EXPR...
//	bind [flags] tokens EXPR
//	bind [flags] ast [native|json|yaml] EXPR
//	bind [flags] run SCRIPT
//	bind [flags] repl
//	bind [flags] init
//
// Scope data is read from the files named with -s. Relative names are
// searched in the working directory, each directory listed in BIND_PATH and
// finally the configuration directory.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (see [pkg.ConfigDir]), written by the init command. Keys are
// flag names with either hyphens or underscores:
//
//	log-level: debug
//	scope:
//	  - defaults.yaml
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o bind .
//
// It adds --pprof-mode to select a profile and --pprof-dir for its output
// directory, by default the pprof subdirectory of [pkg.CacheDir].
//
// # Examples
//
//	# Evaluate against a data file
//	bind -s user.yaml 'user.first + " " + user.last'
//
//	# Run a watch script with debug logging
//	bind --log-level=debug run counter.yaml
package cli
