package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/log"
	"github.com/ardnew/bind/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type scopeFilesKey struct{}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithScopeFiles returns a new context.Context carrying the scope data files
// named on the command line. They are opened and decoded by [loadScope].
func WithScopeFiles(ctx context.Context, files []string) context.Context {
	return context.WithValue(ctx, scopeFilesKey{}, files)
}

func scopeFilesFrom(ctx context.Context) []string {
	files, _ := ctx.Value(scopeFilesKey{}).([]string)

	return files
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// source is one scope data file resolved on disk, or stdin.
type source struct {
	path  string
	stdin bool
}

// resolveSources locates each named file along the search path and drops
// duplicates by device and inode. All occurrences of "-" collapse into a
// single stdin source placed last, so it reads after all regular files.
func resolveSources(names []string) ([]source, error) {
	var (
		srcs     []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := pkg.FindFile(name)
		if err != nil {
			return nil, err
		}

		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		srcs = append(srcs, source{path: path})
	}

	if hasStdin {
		srcs = append(srcs, source{path: stdinSource, stdin: true})
	}

	return srcs, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// loadScope decodes the scope files carried by ctx and merges their
// top-level keys in command-line order. Later files override earlier ones.
func loadScope(ctx context.Context) (lang.Map, error) {
	data := lang.Map{}

	srcs, err := resolveSources(scopeFilesFrom(ctx))
	if err != nil {
		return nil, err
	}

	for _, src := range srcs {
		m, err := src.decode()
		if err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "loaded scope file",
			slog.String("path", src.path),
			slog.Int("keys", len(m)),
		)

		maps.Copy(data, m)
	}

	return data, nil
}

// decode reads the whole source through a read-ahead buffer and decodes it
// by file extension. Stdin is decoded as YAML, which also accepts JSON.
func (s source) decode() (lang.Map, error) {
	ext := ".yaml"

	var r io.Reader = os.Stdin

	if !s.stdin {
		ext = filepath.Ext(s.path)

		file, err := os.Open(s.path)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}
		defer file.Close()

		r = file
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	return decodeScope(ra, ext, s.path)
}

// readFile returns the contents of the named file, located along the search
// path, read through a read-ahead buffer.
func readFile(name string) ([]byte, string, error) {
	if name == stdinSource {
		data, err := readAll(os.Stdin)

		return data, name, err
	}

	path, err := pkg.FindFile(name)
	if err != nil {
		return nil, name, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, path, pkg.ErrReadInput.Wrap(err)
	}
	defer file.Close()

	data, err := readAll(file)

	return data, path, err
}

func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	return data, nil
}
