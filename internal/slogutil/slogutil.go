package slogutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LevelSilent is above every standard level.
const LevelSilent = slog.Level(100)

// NewLogger creates a logger in ownergen's line format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(newLineHandler(w, level))
}

// NewDiscardLogger creates a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(newLineHandler(io.Discard, LevelSilent))
}

// LevelFromString maps debug, info, warn and error (any case) to a level.
// Unknown strings map to warn, the CLI default.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "silent":
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity converts -v/-q flags to a level. With neither flag set
// it returns fallback.
//   - quiet: silent
//   - -v: info
//   - -vv: debug
func LevelFromVerbosity(verbosity int, quiet bool, fallback slog.Level) slog.Level {
	if quiet {
		return LevelSilent
	}
	switch verbosity {
	case 0:
		return fallback
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Options configures Setup.
type Options struct {
	Level slog.Level

	// File, when set, receives a copy of every record at FileLevel.
	File       string
	FileLevel  slog.Level
	MaxSize    string
	MaxBackups int
}

// Setup builds the process logger: console output to w, plus an optional
// log file that rolls at MaxSize. The returned closer is never nil.
func Setup(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	console := newLineHandler(w, opts.Level)
	if opts.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	file, err := openLogFile(opts.File, ParseSize(opts.MaxSize), opts.MaxBackups)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(bothHandler{console, newLineHandler(file, opts.FileLevel)}), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// bothHandler sends each record to the console and the log file, each
// filtering by its own level.
type bothHandler [2]slog.Handler

func (b bothHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return b[0].Enabled(ctx, level) || b[1].Enabled(ctx, level)
}

func (b bothHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range b {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b bothHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return bothHandler{b[0].WithAttrs(attrs), b[1].WithAttrs(attrs)}
}

func (b bothHandler) WithGroup(name string) slog.Handler {
	return bothHandler{b[0].WithGroup(name), b[1].WithGroup(name)}
}
