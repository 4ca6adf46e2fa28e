package codeowners

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ownergen/internal/errors"
	"ownergen/internal/testutil"
)

var basicRules = []Rule{
	{Pattern: "src/api/**", Owners: []string{"@alice", "@bob"}},
	{Pattern: "src/**", Owners: []string{"@carol"}},
	{Pattern: "*.md", Owners: []string{"@docs"}},
	{Pattern: "**", Owners: []string{"@carol"}},
}

func TestGoldenRender(t *testing.T) {
	testutil.CompareGolden(t, filepath.Join("testdata", "basic.codeowners"), []byte(Render(basicRules)))
}

func TestRender_Empty(t *testing.T) {
	got := Render(nil)
	if got != Header+"\n" {
		t.Errorf("empty render = %q", got)
	}
	if lines := strings.Split(strings.TrimSpace(got), "\n"); len(lines) != 2 {
		t.Errorf("expected the two header lines only, got %d lines", len(lines))
	}
}

func TestRender_LongPatternWidensColumn(t *testing.T) {
	long := strings.Repeat("x", 50) + "/**"
	got := Render([]Rule{{Pattern: long, Owners: []string{"@a"}}, {Pattern: "**", Owners: []string{"@b"}}})

	lines := strings.Split(got, "\n")
	if want := long + "  @a"; lines[3] != want {
		t.Errorf("line = %q, want %q", lines[3], want)
	}
	if want := "**" + strings.Repeat(" ", len(long)) + "@b"; lines[4] != want {
		t.Errorf("line = %q, want %q", lines[4], want)
	}
}

func TestRender_NonASCIIPatternAlignment(t *testing.T) {
	wide := strings.Repeat("ü", 45) + "/**"
	got := Render([]Rule{{Pattern: wide, Owners: []string{"@a"}}, {Pattern: "**", Owners: []string{"@b"}}})

	lines := strings.Split(got, "\n")
	for i, want := range map[int]string{3: "@a", 4: "@b"} {
		runes := []rune(lines[i])
		col := strings.Index(lines[i], want)
		if col < 0 {
			t.Fatalf("line %q has no owner %s", lines[i], want)
		}
		if runeCol := utf8.RuneCountInString(lines[i][:col]); runeCol != 50 {
			t.Errorf("owner %s starts at column %d, want 50 (line %q)", want, runeCol, lines[i])
		}
		if len(runes) != 52 {
			t.Errorf("line %q is %d runes, want 52", lines[i], len(runes))
		}
	}
}

func TestEncode_Structured(t *testing.T) {
	tests := []struct {
		format Format
		decode func([]byte, any) error
	}{
		{FormatJSON, json.Unmarshal},
		{FormatYAML, yaml.Unmarshal},
		{FormatTOML, toml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, basicRules, tt.format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			var doc Document
			if err := tt.decode(buf.Bytes(), &doc); err != nil {
				t.Fatalf("decode: %v\n%s", err, buf.String())
			}
			if doc.Generator != "ownergen" || len(doc.Rules) != len(basicRules) {
				t.Fatalf("doc = %+v", doc)
			}
			if doc.Rules[0].Pattern != "src/api/**" || doc.Rules[0].Owners[1] != "@bob" {
				t.Errorf("first rule = %+v", doc.Rules[0])
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"codeowners": FormatCodeowners,
		"JSON":       FormatJSON,
		"yml":        FormatYAML,
		"toml":       FormatTOML,
	}
	for in, want := range tests {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.HasCode(err, errors.InvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitlab", "CODEOWNERS")
	if err := WriteFile(path, basicRules, FormatCodeowners); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Render(basicRules) {
		t.Error("file content differs from Render output")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	// Rendered output parses back to the same rules.
	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := parsed.RuleList()
	if len(got) != len(basicRules) {
		t.Fatalf("parsed %d rules, want %d", len(got), len(basicRules))
	}
	for i := range got {
		if got[i].Pattern != basicRules[i].Pattern || strings.Join(got[i].Owners, " ") != strings.Join(basicRules[i].Owners, " ") {
			t.Errorf("rule %d = %+v, want %+v", i, got[i], basicRules[i])
		}
	}
}
