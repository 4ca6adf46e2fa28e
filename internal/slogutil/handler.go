// Package slogutil builds ownergen's loggers. Records are written one per
// line as
//
//	2024-03-01T12:00:00Z [info] Analyzed ownership | branch=main summary.files=5 duration=12ms
//
// Group values, including LogValuers such as ownership.Summary, are
// flattened into dotted keys.
package slogutil

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// lineHandler is the slog.Handler behind every ownergen logger.
type lineHandler struct {
	out    *lockedWriter
	level  slog.Leveler
	prefix string // dotted group path from WithGroup, with trailing dot
	attrs  string // pre-rendered WithAttrs output, each item led by a space
}

// lockedWriter serializes whole lines from handlers sharing one writer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) write(p []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(p)
	return err
}

func newLineHandler(w io.Writer, level slog.Leveler) *lineHandler {
	return &lineHandler{out: &lockedWriter{w: w}, level: level}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(levelName(r.Level))
	b.WriteString("] ")
	b.WriteString(r.Message)

	var kv strings.Builder
	kv.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&kv, h.prefix, a)
		return true
	})
	if kv.Len() > 0 {
		b.WriteString(" |")
		b.WriteString(kv.String())
	}
	b.WriteByte('\n')
	return h.out.write([]byte(b.String()))
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var kv strings.Builder
	kv.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&kv, h.prefix, a)
	}
	h2 := *h
	h2.attrs = kv.String()
	return &h2
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

// appendAttr writes " key=value" for a, or one such item per member when a
// is a group.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		members := v.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, m := range members {
			appendAttr(b, prefix, m)
		}
		return
	}
	if a.Key == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(v))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindDuration:
		d := v.Duration()
		if d >= time.Millisecond {
			d = d.Round(time.Millisecond)
		}
		return d.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(v.String())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
