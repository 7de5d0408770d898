package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/bind/cli/cmd/repl"
	"github.com/ardnew/bind/log"
)

// Repl starts an interactive session over the scope data.
type Repl struct{}

// Run executes the repl command. History is kept beside the configuration
// file.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := loadScope(ctx)
	if err != nil {
		return err
	}

	dir := "."

	if ktx := kongContextFrom(ctx); ktx != nil {
		if path, ok := ktx.Model.Vars()[ConfigIdentifier]; ok {
			dir = filepath.Dir(path)
		}
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("dir", dir),
		slog.Int("keys", len(data)),
	)

	return repl.Run(ctx, data, dir, log.Default())
}
