package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fadegraph/pkg/errors"
)

// =============================================================================
// Format
// =============================================================================

// Format identifies the encoding of a definition document.
type Format string

// Supported definition encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
// Unknown extensions fall back to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Definition
// =============================================================================

// Definition is one node record of a graph document.
type Definition struct {
	ID       int      `json:"id" yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	IsBoss   Flag     `json:"is_boss" yaml:"is_boss"`
	Name     string   `json:"name" yaml:"name"`
	XPos     float64  `json:"x_pos" yaml:"x_pos"`
	YPos     float64  `json:"y_pos" yaml:"y_pos"`
	Content  string   `json:"content,omitempty" yaml:"content,omitempty"`
	Children []string `json:"children" yaml:"children"`
	Parents  []string `json:"parents" yaml:"parents"`
}

// Flag is a boolean that travels as the strings "true"/"false".
// Plain JSON/YAML booleans are accepted on input as well.
type Flag bool

// MarshalJSON writes the flag as a quoted string.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// UnmarshalJSON accepts "true", "false", true and false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	return f.set(s)
}

// MarshalYAML writes the flag as a quoted string.
func (f Flag) MarshalYAML() (any, error) {
	if f {
		return "true", nil
	}
	return "false", nil
}

// UnmarshalYAML accepts the same spellings as UnmarshalJSON.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	return f.set(node.Value)
}

// set accepts "true" and "false", reads an empty or null value as false and
// rejects everything else.
func (f *Flag) set(s string) error {
	switch s {
	case "true":
		*f = true
	case "false", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// ReadDefinitions decodes a definition document from r.
func ReadDefinitions(r io.Reader, format Format) ([]Definition, error) {
	var defs []Definition
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&defs); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeLoad, err, "decode yaml")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&defs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoad, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown definition format %q", format)
	}
	return defs, nil
}

// ReadDefinitionsFile reads a definition file, choosing the decoder from the
// file extension.
func ReadDefinitionsFile(path string) ([]Definition, error) {
	if err := errors.ValidateSourcePath(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "load %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "open %s", path)
	}
	defer f.Close()
	return ReadDefinitions(f, FormatFromPath(path))
}

// WriteDefinitions encodes defs to w as indented JSON or YAML.
func WriteDefinitions(w io.Writer, defs []Definition, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(defs); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(defs); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// MarshalDefinitions converts definitions to indented JSON bytes.
func MarshalDefinitions(defs []Definition) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDefinitions(&buf, defs, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CountLinks returns the number of child references across all definitions.
// It equals the number of edges drawn per frame once the graph is built.
func CountLinks(defs []Definition) int {
	n := 0
	for _, d := range defs {
		n += len(d.Children)
	}
	return n
}
