package richtext

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToMarkdown re-serializes a document tree to Markdown.
//
// Bold is written as "**", italic as "_" and code as a backtick span. Mark
// changes between adjacent text nodes are emitted as the minimal set of
// closing and opening delimiters, so sibling spans never produce "****".
// Underline has no Markdown form and is dropped.
func ToMarkdown(doc *Node) string {
	if doc == nil {
		return ""
	}
	var blocks []*Node
	if doc.NodeType == TypeDocument {
		blocks = doc.Content
	} else {
		blocks = []*Node{doc}
	}
	return renderBlocks(blocks)
}

func renderBlocks(blocks []*Node) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBlock(n *Node) string {
	switch {
	case n.NodeType == TypeParagraph:
		return renderInline(n.Content)
	case HeadingLevel(n.NodeType) > 0:
		text := strings.ReplaceAll(renderInline(n.Content), "\\\n", " ")
		return strings.Repeat("#", HeadingLevel(n.NodeType)) + " " + text
	case n.NodeType == TypeHorizontalRule:
		return "---"
	case n.NodeType == TypeBlockquote:
		return prefixLines(renderBlocks(n.Content), "> ", ">")
	case n.NodeType == TypeUnorderedList, n.NodeType == TypeOrderedList:
		return renderList(n)
	case n.NodeType == TypeListItem:
		return renderBlocks(n.Content)
	case n.IsText():
		return renderInline([]*Node{n})
	}
	return renderBlocks(n.Content)
}

func renderList(list *Node) string {
	start := listStart(list)
	tight := true
	for _, item := range list.Content {
		if len(item.Content) > 1 {
			tight = false
		}
	}
	sep := "\n"
	if !tight {
		sep = "\n\n"
	}

	items := make([]string, 0, len(list.Content))
	for i, item := range list.Content {
		marker := "- "
		if list.NodeType == TypeOrderedList {
			marker = fmt.Sprintf("%d. ", start+i)
		}
		body := renderBlocks(item.Content)
		indent := strings.Repeat(" ", len(marker))
		items = append(items, marker+indentContinuation(body, indent))
	}
	return strings.Join(items, sep)
}

// listStart reads data.start, which may be an int or a float64 after a JSON
// round trip.
func listStart(list *Node) int {
	switch v := list.Data["start"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 1
}

func indentContinuation(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func prefixLines(s, prefix, emptyPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = emptyPrefix
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// delimiters used on re-serialization. Underline is absent on purpose.
var markDelims = map[MarkType]string{
	MarkBold:   "**",
	MarkItalic: "_",
}

type openMark struct {
	mark  MarkType
	delim string
}

type inlineRenderer struct {
	sb      strings.Builder
	nodes   []*Node
	pos     int
	stack   []openMark
	pending string // whitespace held back until after the next transition
}

func renderInline(nodes []*Node) string {
	var visible []*Node
	for _, n := range nodes {
		if n.IsText() && n.Value != "" {
			visible = append(visible, n)
		}
	}
	r := &inlineRenderer{nodes: visible}
	for i, n := range visible {
		r.pos = i
		r.text(n)
	}
	r.transition(0)
	r.sb.WriteString(r.pending)
	return strings.TrimRight(r.sb.String(), " \t")
}

func (r *inlineRenderer) text(n *Node) {
	set := n.MarkSet().Without(MarkUnderline)
	value := n.Value

	if !set.Has(MarkCode) {
		lead := len(value) - len(strings.TrimLeft(value, " \t"))
		r.pending += value[:lead]
		value = value[lead:]
		if value == "" {
			return
		}
	}
	trimmed := value
	if !set.Has(MarkCode) {
		trimmed = strings.TrimRight(value, " \t")
	}

	r.transition(set.Without(MarkCode))
	r.sb.WriteString(r.pending)
	r.pending = ""

	if set.Has(MarkCode) {
		r.sb.WriteString(CodeSpan(value))
		return
	}
	r.sb.WriteString(escapeText(trimmed, r.atLineStart()))
	r.pending = value[len(trimmed):]
}

// transition closes and opens delimiters so that exactly the marks in want
// are open. Marks shared with the current stack prefix stay open.
func (r *inlineRenderer) transition(want MarkSet) {
	keep := 0
	for keep < len(r.stack) && want.Has(r.stack[keep].mark) {
		keep++
	}
	for i := len(r.stack) - 1; i >= keep; i-- {
		r.sb.WriteString(r.stack[i].delim)
	}
	r.stack = r.stack[:keep]

	var open MarkSet
	for _, m := range r.stack {
		open = open.With(m.mark)
	}
	if open == want {
		return
	}
	r.sb.WriteString(r.pending)
	r.pending = ""
	for _, m := range want.Types() {
		if open.Has(m) {
			continue
		}
		d, ok := markDelims[m]
		if !ok {
			continue
		}
		if m == MarkItalic && r.italicIntraword() {
			d = "*"
		}
		r.sb.WriteString(d)
		r.stack = append(r.stack, openMark{mark: m, delim: d})
	}
}

// italicIntraword reports whether an italic span opening at the current node
// touches a letter or digit on either side. An underscore there would not be
// read as emphasis.
func (r *inlineRenderer) italicIntraword() bool {
	if last, _ := utf8.DecodeLastRuneInString(r.sb.String()); isWordRune(last) {
		return true
	}
	for _, n := range r.nodes[r.pos:] {
		if n.HasMark(MarkItalic) {
			continue
		}
		first, _ := utf8.DecodeRuneInString(n.Value)
		return !n.HasMark(MarkCode) && isWordRune(first)
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func (r *inlineRenderer) atLineStart() bool {
	s := r.sb.String()
	return len(s) == 0 || strings.HasSuffix(s, "\n")
}

// CodeSpan wraps s in a backtick fence longer than any backtick run inside it.
func CodeSpan(s string) string {
	longest, run := 0, 0
	for _, c := range s {
		if c == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.TrimSpace(s) != "") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// escapeText backslash-escapes characters that would otherwise be read as
// Markdown syntax. Embedded newlines become hard breaks.
func escapeText(s string, lineStart bool) string {
	var sb strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			sb.WriteString("\\\n")
			lineStart = true
		}
		line = EscapeInline(line)
		if lineStart {
			line = EscapeLineStart(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// EscapeInline escapes emphasis, code and escape characters, plus an
// ampersand that would be read as an entity reference.
func EscapeInline(s string) string {
	if !strings.ContainsAny(s, "\\*_`&") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i, c := range s {
		switch c {
		case '\\', '*', '_', '`':
			sb.WriteByte('\\')
		case '&':
			if startsEntity(s[i:]) {
				sb.WriteByte('\\')
			}
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func startsEntity(s string) bool {
	return EntityLen(s) > 0
}

// EntityLen returns the length of the character reference at the start of s,
// or 0 if there is none. A reference is &name; for a known entity name,
// &#digits; (up to 7 digits) or &#xhex; (up to 6 hex digits).
func EntityLen(s string) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	switch {
	case s[1] == '#':
		i = 2
		digit, limit := isDecimal, 7
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			digit, limit = isHex, 6
		}
		start := i
		for i < len(s) && i-start < limit && digit(s[i]) {
			i++
		}
		if i == start {
			return 0
		}
	case isASCIILetter(s[1]):
		for i < len(s) && i <= 32 && (isASCIILetter(s[i]) || isDecimal(s[i])) {
			i++
		}
	default:
		return 0
	}
	if i >= len(s) || s[i] != ';' {
		return 0
	}
	if ref := s[:i+1]; html.UnescapeString(ref) == ref {
		return 0
	}
	return i + 1
}

func isASCIILetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool { return isDecimal(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' }

// EscapeLineStart escapes a leading character that would otherwise start a
// block construct such as a heading, quote, bullet, fence or list number.
// It must run after EscapeInline.
func EscapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '>', '-', '+', '~':
		return "\\" + s
	}
	// "12. " or "12) " would start an ordered list.
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + "\\" + s[i:]
	}
	return s
}
