// Package source decodes form schemas and data objects from JSON, JSONC and
// YAML documents.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	goform "github.com/reoring/goform"
)

// Format names a document encoding.
type Format string

const (
	JSON  Format = "json"
	JSONC Format = "jsonc"
	YAML  Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Unknown extensions
// are treated as YAML, which also accepts plain JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".jsonc", ".json5":
		return JSONC
	default:
		return YAML
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, JSONC, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("source: unknown format %q", s)
	}
}

// DecodeDocument decodes b into JSON-like Go values: map[string]any, []any,
// string, bool, int, float64 and nil. Duplicate object keys are rejected.
func DecodeDocument(b []byte, f Format) (any, error) {
	v, err := decode(b, f)
	if err != nil {
		return nil, err
	}
	return lower(v), nil
}

// decode is DecodeDocument with mappings left as ordered objects.
func decode(b []byte, f Format) (any, error) {
	switch f {
	case JSON:
		return decodeJSON(b)
	case JSONC:
		return decodeJSON(jsonc.ToJSON(b))
	case YAML:
		v, err := decodeYAML(b)
		if err != nil {
			iss := goform.RootPath().Issue(goform.CodeParseError, err.Error())
			iss.Cause = err
			return nil, goform.AppendIssues(nil, iss)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("source: unknown format %q", f)
	}
}

// LoadData decodes a data object. An empty document yields an empty object.
func LoadData(b []byte, f Format) (goform.Data, error) {
	v, err := DecodeDocument(b, f)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return goform.Data{}, nil
	}
	d, ok := ToData(v).(goform.Data)
	if !ok {
		return nil, goform.AppendIssues(nil, goform.RootPath().Issue(goform.CodeParseError, fmt.Sprintf("data must be an object, got %T", v)))
	}
	return d, nil
}

// ToData converts decoded objects into goform.Data recursively.
func ToData(v any) any {
	switch t := v.(type) {
	case *object:
		return ToData(lower(t))
	case map[string]any:
		out := make(goform.Data, len(t))
		for k, vv := range t {
			out[k] = ToData(vv)
		}
		return out
	case goform.Data:
		out := make(goform.Data, len(t))
		for k, vv := range t {
			out[k] = ToData(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = ToData(t[i])
		}
		return out
	default:
		return v
	}
}

// EncodeData renders d in the given format. JSONC is written as JSON.
func EncodeData(d goform.Data, f Format) ([]byte, error) {
	if d == nil {
		d = goform.Data{}
	}
	switch f {
	case JSON, JSONC:
		b, err := j.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("source: encode json: %w", err)
		}
		return append(b, '\n'), nil
	case YAML:
		b, err := yaml.Marshal(plain(d))
		if err != nil {
			return nil, fmt.Errorf("source: encode yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("source: unknown format %q", f)
	}
}

// plain lowers Data and []Data into map/slice values yaml.v3 renders as
// plain mappings.
func plain(v any) any {
	switch t := v.(type) {
	case goform.Data:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plain(vv)
		}
		return out
	case map[string]any:
		return plain(goform.Data(t))
	case []goform.Data:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	default:
		return v
	}
}

// ReadDataFile loads a data object from path, choosing the format from the
// extension.
func ReadDataFile(path string) (goform.Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read data: %w", err)
	}
	d, err := LoadData(b, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return d, nil
}

// ReadSchemaFile loads a schema list from path, choosing the format from
// the extension.
func ReadSchemaFile(path string) ([]goform.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read schema: %w", err)
	}
	s, err := LoadSchema(b, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return s, nil
}
