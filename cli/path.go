package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/bind/cli/cmd"
	"github.com/ardnew/bind/pkg"
)

// baseConfig is the base name of the YAML configuration file.
const baseConfig = "config.yaml"

var defaultDirMode os.FileMode = 0o700

// configPath joins the configuration directory with the given elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return pkg.ErrReadInput.Wrap(err)
		}
	}

	return nil
}

func extensions() string {
	return strings.Join(cmd.Extensions(), ",")
}
