// Package log wraps [log/slog] with a small leveled interface.
//
// A [Logger] is configured once with functional options and is safe to copy
// and share between goroutines. The zero Logger discards everything, so
// library types can embed one without requiring callers to configure it.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//	logger.Debug("digest settled", slog.Int("passes", 3))
//
// The package-level functions ([Trace], [Debug], [Info], [Warn], [Error])
// write through a default logger that [Config] reconfigures.
//
// In addition to the [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-pass digest and per-node compile output.
package log
