package htmlmd

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

// Writer accumulates Markdown output for one container.
//
// Whitespace in text collapses to a single pending space that is only
// written between two pieces of visible content on the same line. Line and
// block breaks are also held back, so a run of empty elements never produces
// stray blank lines.
type Writer struct {
	buf    []byte
	space  bool // collapsed whitespace waiting to be written
	breaks int  // newlines waiting to be written before the next content

	// leading is set when whitespace came before any content. Wraps use it to
	// move the space outside their delimiters.
	leading bool

	// active counts open wrap delimiters; a wrap nested inside the same
	// delimiter passes its children through.
	active map[string]int

	// inItem is set for list item content, where nested lists follow their
	// parent line without a blank line.
	inItem bool

	// lastWrap is the suffix of the wrap that ended at lastWrapEnd, used to
	// merge adjacent wraps with the same delimiter. wrapOpen and wrapClose
	// are the delimiters actually written for it, starting at wrapStart.
	lastWrap    string
	lastWrapEnd int
	wrapStart   int
	wrapOpen    string
	wrapClose   string
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{active: map[string]int{}}
}

// Sub returns a Writer for a nested container. Open wrap delimiters carry
// over; list item state does not.
func (w *Writer) Sub() *Writer {
	sub := NewWriter()
	for k, v := range w.active {
		sub.active[k] = v
	}
	return sub
}

// String returns everything written so far, without pending whitespace.
func (w *Writer) String() string {
	return string(w.buf)
}

// Empty reports whether no visible content has been written.
func (w *Writer) Empty() bool {
	return len(w.buf) == 0
}

func (w *Writer) atLineStart() bool {
	return len(w.buf) == 0 || w.buf[len(w.buf)-1] == '\n'
}

// flush writes pending breaks or the pending space ahead of new content.
func (w *Writer) flush() {
	switch {
	case len(w.buf) == 0:
		if w.space {
			w.leading = true
		}
	case w.breaks > 0:
		for range w.breaks {
			w.buf = append(w.buf, '\n')
		}
	case w.space && !w.atLineStart():
		w.buf = append(w.buf, ' ')
	}
	w.space = false
	w.breaks = 0
}

// Text writes HTML text content: whitespace collapses and Markdown syntax
// characters are escaped.
func (w *Writer) Text(s string) {
	for len(s) > 0 {
		i := strings.IndexFunc(s, isHTMLSpace)
		if i == 0 {
			w.Space()
			s = strings.TrimLeftFunc(s, isHTMLSpace)
			continue
		}
		word := s
		if i > 0 {
			word = s[:i]
		}
		s = s[len(word):]

		w.flush()
		if len(w.buf) == w.lastWrapEnd {
			w.starClosingWrap(word)
		}
		esc := richtext.EscapeInline(word)
		if w.atLineStart() {
			esc = richtext.EscapeLineStart(esc)
		}
		w.buf = append(w.buf, esc...)
	}
}

// Raw writes markup without escaping.
func (w *Writer) Raw(s string) {
	if s == "" {
		return
	}
	w.flush()
	w.buf = append(w.buf, s...)
}

// Space records collapsible whitespace.
func (w *Writer) Space() {
	if w.breaks == 0 {
		w.space = true
	}
}

// BlockBreak ends the current block; the next content starts after a blank line.
func (w *Writer) BlockBreak() {
	w.breaks = 2
	w.space = false
}

// LineBreak requests at least one newline before the next content.
func (w *Writer) LineBreak() {
	w.breaks = max(w.breaks, 1)
	w.space = false
}

// HardBreak writes a Markdown hard line break. It is dropped at the start of
// a line, where it would only produce an empty line.
func (w *Writer) HardBreak() {
	if w.atLineStart() || w.breaks > 0 {
		return
	}
	w.buf = append(w.buf, "  \n"...)
	w.space = false
}

// Block writes s as a standalone block separated by blank lines.
func (w *Writer) Block(s string) {
	if s == "" {
		return
	}
	w.BlockBreak()
	w.Raw(s)
	w.BlockBreak()
}

// Wrap writes inner between prefix and suffix. Whitespace recorded before or
// after inner is moved outside the delimiters, an empty inner writes nothing,
// and a wrap directly following one with the same suffix is merged into it.
func (w *Writer) Wrap(prefix string, inner *Writer, suffix string) {
	content := strings.TrimSpace(inner.String())
	if content == "" {
		if inner.leading || inner.space {
			w.Space()
		}
		return
	}
	if inner.leading {
		w.Space()
	}

	if suffix != "" && !w.space && w.breaks == 0 &&
		w.lastWrap == suffix && w.lastWrapEnd == len(w.buf) {
		w.buf = append(w.buf[:len(w.buf)-len(w.wrapClose)], content...)
		w.buf = append(w.buf, w.wrapClose...)
	} else {
		w.flush()
		opener, closer := prefix, suffix
		if last, _ := utf8.DecodeLastRune(w.buf); isWordRune(last) {
			opener, closer = starDelimiter(opener), starDelimiter(closer)
		}
		w.wrapStart = len(w.buf)
		w.buf = append(w.buf, opener...)
		w.buf = append(w.buf, content...)
		w.buf = append(w.buf, closer...)
		w.wrapOpen, w.wrapClose = opener, closer
	}
	w.lastWrap, w.lastWrapEnd = suffix, len(w.buf)

	if inner.space {
		w.Space()
	}
}

// starClosingWrap switches the wrap that just ended from underscores to
// asterisks when word starts with a letter or digit. Underscores touching a
// word on both sides are literal in Markdown.
func (w *Writer) starClosingWrap(word string) {
	if !strings.Contains(w.wrapClose, "_") {
		return
	}
	if first, _ := utf8.DecodeRuneInString(word); !isWordRune(first) {
		return
	}
	opener, closer := starDelimiter(w.wrapOpen), starDelimiter(w.wrapClose)
	copy(w.buf[w.wrapStart:], opener)
	copy(w.buf[len(w.buf)-len(closer):], closer)
	w.wrapOpen, w.wrapClose = opener, closer
}

func starDelimiter(d string) string {
	return strings.ReplaceAll(d, "_", "*")
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// trimBlock strips the blank lines and trailing spaces around a nested
// container's output.
func trimBlock(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "\n"), " \n")
}

func indentContinuation(s string, width int) string {
	pad := strings.Repeat(" ", width)
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func prefixLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

// isHTMLSpace matches the ASCII whitespace HTML collapses. Non-breaking
// spaces are content.
func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
