// Package usermap loads the table that renames contributor emails or email
// local parts to CODEOWNERS handles.
package usermap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ownergen/internal/errors"
)

// Mapping maps an email or an email local part to a username.
type Mapping map[string]string

// Load reads a mapping file. The encoding follows the extension: .yaml and
// .yml are YAML, .toml is TOML, anything else is JSON. The file must hold a
// single flat table of string keys to non-empty string values.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ConfigFileError, "failed to read username mapping "+path, err)
	}

	m, err := decode(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.New(errors.ConfigFileError, "failed to parse username mapping "+path, err)
	}
	if err := m.validate(); err != nil {
		return nil, errors.New(errors.ConfigFileError, "invalid username mapping "+path, err)
	}
	return m, nil
}

func decode(data []byte, ext string) (Mapping, error) {
	m := Mapping{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, fmt.Errorf("unexpected data after the mapping object")
		}
	}
	if m == nil {
		// "null" in JSON or an empty YAML document
		m = Mapping{}
	}
	return m, nil
}

func (m Mapping) validate() error {
	for k, v := range m {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("empty key")
		}
		if strings.TrimSpace(strings.TrimPrefix(v, "@")) == "" {
			return fmt.Errorf("empty username for %q", k)
		}
	}
	return nil
}
