package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextWriter writes raw text, one item after another. Items must be strings
// or implement fmt.Stringer. Each item ends with a newline.
type TextWriter struct {
	w     *bufio.Writer
	count int
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes a single item. Consecutive items are separated by a blank line.
func (w *TextWriter) Write(data any) error {
	var text string
	switch v := data.(type) {
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		return fmt.Errorf("text output needs a string, got %T", data)
	}

	if w.count > 0 {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	w.count++

	if _, err := w.w.WriteString(text); err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// WriteAll writes multiple items.
func (w *TextWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
