package codeowners

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ownergen/internal/errors"
)

// Header is written at the top of every generated CODEOWNERS file.
const Header = "# CODEOWNERS file generated by ownergen\n" +
	"# This file defines code ownership for GitLab\n"

// minPatternColumn is the narrowest pattern column in rendered output.
const minPatternColumn = 40

// Format is an output encoding.
type Format string

const (
	FormatCodeowners Format = "codeowners"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCodeowners, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.InvalidArgument, "unknown output format %q (want codeowners, json, yaml or toml)", s)
	}
}

// Document is the structured form of a rule list.
type Document struct {
	Generator string `json:"generator" yaml:"generator" toml:"generator"`
	Rules     []Rule `json:"rules" yaml:"rules" toml:"rules"`
}

// Render returns rules as CODEOWNERS text.
func Render(rules []Rule) string {
	width := minPatternColumn
	for _, r := range rules {
		if w := utf8.RuneCountInString(r.Pattern) + 2; w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "%-*s%s\n", width, r.Pattern, strings.Join(r.Owners, " "))
	}
	return b.String()
}

// Encode writes rules to w in the given format.
func Encode(w io.Writer, rules []Rule, format Format) error {
	if rules == nil {
		rules = []Rule{}
	}
	doc := Document{Generator: "ownergen", Rules: rules}

	var data []byte
	var err error
	switch format {
	case FormatCodeowners, "":
		data = []byte(Render(rules))
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	case FormatTOML:
		data, err = toml.Marshal(doc)
	default:
		return errors.Newf(errors.InvalidArgument, "unknown output format %q", format)
	}
	if err != nil {
		return errors.New(errors.InternalError, "failed to encode rules as "+string(format), err)
	}

	if _, err := w.Write(data); err != nil {
		return errors.New(errors.InternalError, "failed to write rules", err)
	}
	return nil
}

// WriteFile encodes rules to path, creating parent directories. The file is
// written to a temporary sibling first and renamed into place.
func WriteFile(path string, rules []Rule, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rules, format); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(errors.InternalError, "failed to create output directory", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.New(errors.InternalError, "failed to write "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.New(errors.InternalError, "failed to replace "+path, err)
	}
	return nil
}
