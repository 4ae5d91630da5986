// Package output writes conversion results as text, JSON, JSONL or YAML.
package output

import (
	"fmt"
	"io"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatText  Format = "text"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatJSONL, FormatYAML}
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single result.
	Write(data any) error

	// WriteAll outputs multiple results.
	WriteAll(data []any) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// buffered collects results for writers that can only encode once all of
// them are known.
type buffered struct {
	items   []any
	pending bool
}

// Write buffers a single result.
func (b *buffered) Write(data any) error {
	b.items = append(b.items, data)
	b.pending = true
	return nil
}

// WriteAll buffers multiple results.
func (b *buffered) WriteAll(data []any) error {
	b.items = append(b.items, data...)
	b.pending = true
	return nil
}

// take returns the value to encode and clears the buffer. A single result is
// returned bare. An untouched writer yields an empty list once.
func (b *buffered) take() (any, bool) {
	if !b.pending && b.items != nil {
		return nil, false
	}
	var v any = b.items
	if len(b.items) == 1 {
		v = b.items[0]
	} else if b.items == nil {
		v = []any{}
	}
	b.items = []any{}
	b.pending = false
	return v, true
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatText:
		return NewTextWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
