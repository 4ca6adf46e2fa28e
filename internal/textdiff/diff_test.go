package textdiff

import (
	"os"
	"testing"
)

func TestLines(t *testing.T) {
	lines := Lines("a\nb\nc\n", "a\nx\nc\n")
	want := []Line{
		{Equal, "a"},
		{Delete, "b"},
		{Insert, "x"},
		{Equal, "c"},
	}
	if len(lines) != len(want) {
		t.Fatalf("Lines() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}

	added, removed := Count(lines)
	if added != 1 || removed != 1 {
		t.Errorf("Count() = %d, %d, want 1, 1", added, removed)
	}
}

func TestUnified(t *testing.T) {
	t.Run("equal texts", func(t *testing.T) {
		if got := Unified("a", "b", Lines("x\n", "x\n"), 3, Palette{}); got != "" {
			t.Errorf("Unified() = %q, want empty", got)
		}
	})

	t.Run("single hunk", func(t *testing.T) {
		got := Unified("old", "new", Lines("a\nb\nc\n", "a\nx\nc\n"), 1, Palette{})
		want := "--- old\n+++ new\n@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n"
		if got != want {
			t.Errorf("Unified() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("separate hunks without context", func(t *testing.T) {
		oldText := "1\n2\n3\n4\n5\n6\n"
		newText := "one\n2\n3\n4\n5\nsix\n"
		got := Unified("old", "new", Lines(oldText, newText), 0, Palette{})
		want := "--- old\n+++ new\n" +
			"@@ -1,1 +1,1 @@\n-1\n+one\n" +
			"@@ -6,1 +6,1 @@\n-6\n+six\n"
		if got != want {
			t.Errorf("Unified() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("colored", func(t *testing.T) {
		got := Unified("old", "new", Lines("a\n", "b\n"), 0, Color)
		want := Color.Bold + "--- old" + Color.Reset + "\n" +
			Color.Bold + "+++ new" + Color.Reset + "\n" +
			Color.Cyan + "@@ -1,1 +1,1 @@" + Color.Reset + "\n" +
			Color.Red + "-a" + Color.Reset + "\n" +
			Color.Green + "+b" + Color.Reset + "\n"
		if got != want {
			t.Errorf("Unified() = %q, want %q", got, want)
		}
	})
}

func TestPaletteFor(t *testing.T) {
	if got := PaletteFor(nil); got != (Palette{}) {
		t.Errorf("PaletteFor(nil) = %+v, want zero palette", got)
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := PaletteFor(f); got != (Palette{}) {
		t.Errorf("PaletteFor(file) = %+v, want zero palette", got)
	}
	if IsTerminal(f) {
		t.Error("IsTerminal(file) = true")
	}
	if w := Width(f); w != 80 {
		t.Errorf("Width(file) = %d, want 80", w)
	}
}
