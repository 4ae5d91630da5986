package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// newJSONEncoder returns an encoder that leaves <, > and & alone. Markdown
// output uses all three.
func newJSONEncoder(w io.Writer, indent string) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc
}

// JSONWriter writes every result as one JSON value: the bare result when
// there is one, an array otherwise.
type JSONWriter struct {
	buffered
	w      *bufio.Writer
	indent string
}

// NewJSONWriter creates a JSON writer. Indent is only used when pretty is set.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	jw := &JSONWriter{w: bufio.NewWriter(w)}
	if pretty {
		jw.indent = indent
	}
	return jw
}

// Flush writes the buffered results. Later calls write nothing until more
// results arrive.
func (w *JSONWriter) Flush() error {
	v, ok := w.take()
	if !ok {
		return w.w.Flush()
	}
	if err := newJSONEncoder(w.w, w.indent).Encode(v); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes one compact JSON value per line as results arrive.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	return &JSONLWriter{w: bw, enc: newJSONEncoder(bw, "")}
}

// Write encodes data on its own line and flushes it.
func (w *JSONLWriter) Write(data any) error {
	if err := w.enc.Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes each item on its own line.
func (w *JSONLWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
