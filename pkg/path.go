package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// PathEnv names the environment variable holding extra directories searched
// for scope files and watch scripts given as relative paths.
const PathEnv = "BIND_PATH"

// Prefix returns the base name of the running executable. It names the
// configuration and cache directories.
//
// Binaries produced by dlv ("__debug_bin1234") map to Name, and leading dots
// are removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		id = debugBin.ReplaceAllString(id, Name)
		id = leadingDots.ReplaceAllString(id, "")

		if id == "" {
			return Name
		}

		return id
	},
)

//nolint:gochecknoglobals
var (
	debugBin    = regexp.MustCompile(`^__debug_bin\d+$`)
	leadingDots = regexp.MustCompile(`^\.+`)
)

// ConfigDir returns the directory holding the configuration file and REPL
// history.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the directory for transient files such as snapshots.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins Prefix to the directory returned by base, falling back to
// hidden under the home directory and finally the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// SearchPath returns the directories searched, in order, for a relative file
// name: the working directory, then each directory of list, then ConfigDir.
// Empty and duplicate entries are dropped.
//
// list uses the host path list separator, as in the PathEnv variable.
func SearchPath(list string) []string {
	sep := string(os.PathListSeparator)

	joined := mung.Make(
		mung.WithSubjectItems(list, ConfigDir()),
		mung.WithDelim(sep),
		mung.WithPrefixItems("."),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).String()

	var dirs []string

	for dir := range strings.SplitSeq(joined, sep) {
		if dir != "" && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// FindFile returns name if it is absolute or exists relative to the working
// directory. Otherwise it returns the first match in the directories of
// SearchPath(os.Getenv(PathEnv)). It returns ErrNotFound when nothing matches.
func FindFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	for _, dir := range SearchPath(os.Getenv(PathEnv)) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", ErrNotFound.Wrapf("%s", name)
}
