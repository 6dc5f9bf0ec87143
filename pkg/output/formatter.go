// Package output renders session results for the CLI in json, yaml or a
// human-readable table.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Formatter renders a result payload to bytes.
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// NewFormatter returns the formatter for the given name. Unknown names
// fall back to JSON.
func NewFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "yaml":
		return &YAMLFormatter{}
	case "table":
		return &TableFormatter{}
	case "json":
		return &JSONFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders results as JSON.
type JSONFormatter struct{}

// Format implements Formatter
func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	var (
		encoded []byte
		err     error
	)
	if pretty {
		encoded, err = json.MarshalIndent(data, "", "  ")
	} else {
		encoded, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(encoded, '\n'), nil
}

// YAMLFormatter renders results as YAML.
type YAMLFormatter struct{}

// Format implements Formatter
func (f *YAMLFormatter) Format(data any, _ bool) ([]byte, error) {
	encoded, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoded, nil
}

// TableFormatter renders flat key/value sections as an aligned text table.
type TableFormatter struct{}

// Format implements Formatter. It accepts either a map of sections
// (map[string]map[string]any) or a flat map[string]any; anything else is
// rendered through the JSON formatter.
func (f *TableFormatter) Format(data any, pretty bool) ([]byte, error) {
	switch v := data.(type) {
	case map[string]map[string]any:
		var buf bytes.Buffer
		for _, section := range sortedKeys(v) {
			f.writeSection(&buf, section, v[section])
		}
		return buf.Bytes(), nil
	case map[string]any:
		var buf bytes.Buffer
		f.writeSection(&buf, "", v)
		return buf.Bytes(), nil
	default:
		return (&JSONFormatter{}).Format(data, pretty)
	}
}

func (f *TableFormatter) writeSection(buf *bytes.Buffer, title string, rows map[string]any) {
	titler := cases.Title(language.English)

	if title != "" {
		fmt.Fprintf(buf, "%s\n", titler.String(strings.ReplaceAll(title, "_", " ")))
	}

	keys := sortedKeys(rows)
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	for _, k := range keys {
		label := titler.String(strings.ReplaceAll(k, "_", " "))
		fmt.Fprintf(buf, "  %-*s  %s\n", width+2, label, formatValue(rows[k]))
	}
	buf.WriteByte('\n')
}

func formatValue(v any) string {
	switch value := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", value)
	case float32:
		return fmt.Sprintf("%.2f", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
