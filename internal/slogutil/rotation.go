package slogutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// ParseSize parses a logging.maxSize value such as "10MB", "512KiB" or a
// plain byte count. It returns 0 for empty or invalid input.
func ParseSize(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n > math.MaxInt64 {
		return 0
	}
	return int64(n)
}

// logFile appends to path and, once a write would take it past maxSize,
// rolls it to path.1, path.1 to path.2 and so on, keeping at most keep old
// files. A maxSize of 0 never rolls.
type logFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	keep    int
	f       *os.File
	written int64
}

func openLogFile(path string, maxSize int64, keep int) (*logFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	l := &logFile{path: path, maxSize: maxSize, keep: keep}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *logFile) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	l.f = f
	l.written = info.Size()
	return nil
}

func (l *logFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxSize > 0 && l.written > 0 && l.written+int64(len(p)) > l.maxSize {
		if err := l.roll(); err != nil && l.f == nil {
			return 0, err
		}
	}
	n, err := l.f.Write(p)
	l.written += int64(n)
	return n, err
}

func (l *logFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// roll shifts the numbered files up by one and starts a fresh path. If the
// shift fails the current file stays open.
func (l *logFile) roll() error {
	for i := l.keep - 1; i >= 1; i-- {
		if err := os.Rename(l.numbered(i), l.numbered(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := l.f.Close(); err != nil {
		return err
	}
	l.f = nil

	var err error
	if l.keep > 0 {
		err = os.Rename(l.path, l.numbered(1))
	} else {
		err = os.Remove(l.path)
	}
	if openErr := l.open(); openErr != nil {
		return openErr
	}
	return err
}

func (l *logFile) numbered(i int) string {
	return fmt.Sprintf("%s.%d", l.path, i)
}

var _ io.WriteCloser = (*logFile)(nil)
