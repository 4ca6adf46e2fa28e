package textdiff

import (
	"os"

	"golang.org/x/term"
)

// Palette holds ANSI escapes. The zero value prints no colour.
type Palette struct {
	Reset, Bold, Red, Green, Cyan, Yellow string
}

// Color is the palette used on terminals.
var Color = Palette{
	Reset:  "\033[0m",
	Bold:   "\033[1m",
	Red:    "\033[31m",
	Green:  "\033[32m",
	Cyan:   "\033[36m",
	Yellow: "\033[33m",
}

// PaletteFor returns Color when f is a terminal and NO_COLOR is unset.
func PaletteFor(f *os.File) Palette {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Palette{}
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return Palette{}
	}
	return Color
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, defaulting to 80.
func Width(f *os.File) int {
	if f == nil {
		return 80
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
