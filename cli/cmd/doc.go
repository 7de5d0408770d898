// Package cmd implements the bind subcommands: eval, tokens, ast, run, repl
// and init.
//
// Commands read scope data from the files given with the global -s flag.
// Relative names are searched in the working directory, then each directory
// of BIND_PATH, then the configuration directory. The decoder is chosen by
// extension (see [Extensions]). Stdin, named "-", is decoded as YAML and
// therefore also accepts JSON.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file.
	ConfigIdentifier = "config"
)
