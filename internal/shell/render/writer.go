// Package render serializes conversion results for the CLI and files.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/artpar/shipit/internal/core/deployment"
)

// =============================================================================
// Format
// =============================================================================

// Format is the serialization format of rendered templates.
type Format string

const (
	// FormatYAML writes a multi-document YAML stream.
	FormatYAML Format = "yaml"
	// FormatJSON writes an indented JSON array.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected %q or %q)", s, FormatYAML, FormatJSON)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yml"
}

// =============================================================================
// Writer
// =============================================================================

// Writer serializes templates to an output stream.
type Writer struct {
	format Format
	output io.Writer
}

// NewWriter creates a Writer. A nil output writes to os.Stdout.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{format: format, output: output}
}

// WriteTemplates writes all templates in order. YAML documents are separated
// by "---"; JSON is a single array.
func (w *Writer) WriteTemplates(templates []deployment.Template) error {
	data, err := Marshal(w.format, templates)
	if err != nil {
		return err
	}
	if _, err := w.output.Write(data); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	return nil
}

// Marshal renders templates in the given format.
func Marshal(format Format, templates []deployment.Template) ([]byte, error) {
	switch format {
	case FormatJSON:
		if templates == nil {
			templates = []deployment.Template{}
		}
		data, err := json.MarshalIndent(templates, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		for i, tmpl := range templates {
			if i > 0 {
				buf.WriteString("---\n")
			}
			doc, err := MarshalTemplate(format, tmpl)
			if err != nil {
				return nil, err
			}
			buf.Write(doc)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// MarshalTemplate renders a single template as one YAML document or one JSON
// object.
func MarshalTemplate(format Format, tmpl deployment.Template) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(tmpl, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s to JSON: %w", tmpl.ServiceName(), err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(tmpl)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s to YAML: %w", tmpl.ServiceName(), err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// =============================================================================
// Files
// =============================================================================

// WriteFiles writes one file per template into dir, named after the service
// the template was built from. The directory is created when missing. It
// returns the paths written, in template order. Service names that would
// leave dir are rejected before anything is written for them.
func WriteFiles(dir string, format Format, templates []deployment.Template) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		if err := checkFileName(tmpl.ServiceName()); err != nil {
			return nil, err
		}
		data, err := MarshalTemplate(format, tmpl)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, tmpl.ServiceName()+format.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// checkFileName rejects service names that are not a single path element.
func checkFileName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("service name %q cannot be used as a file name", name)
	}
	return nil
}
