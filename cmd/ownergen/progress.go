package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"ownergen/internal/textdiff"
)

// progress draws a single updating status line on a terminal. On anything
// else it stays silent.
type progress struct {
	mu      sync.Mutex
	out     *os.File
	enabled bool
	width   int
	drawn   bool
}

func newProgress(out *os.File, quiet bool) *progress {
	enabled := !quiet && textdiff.IsTerminal(out)
	p := &progress{out: out, enabled: enabled}
	if enabled {
		p.width = textdiff.Width(out)
	}
	return p
}

func (p *progress) update(done, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("Scoring files %d/%d", done, total)
	if pad := p.width - 1 - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(p.out, "\r%s", line)
	p.drawn = true
}

func (p *progress) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}
