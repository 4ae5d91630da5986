package markdown

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

// parseBlocks segments lines into block nodes. depth counts enclosing
// lists and blockquotes; at maxDepth container syntax is no longer
// recognized and lines fall through to paragraphs.
func (p *Parser) parseBlocks(lines []string, depth int) []*richtext.Node {
	nested := depth < p.maxDepth
	var blocks []*richtext.Node

	for i := 0; i < len(lines); {
		line := lines[i]
		if isBlank(line) {
			i++
			continue
		}

		if f, ok := openFence(line); ok {
			if node, next, ok := parseFence(lines, i, f); ok {
				blocks = append(blocks, node)
				i = next
				continue
			}
			// Unterminated fence: keep the line as text.
			node, next := parseParagraph(lines, i, true)
			blocks = append(blocks, node)
			i = next
			continue
		}

		if isThematicBreak(line) {
			blocks = append(blocks, richtext.NewBlock(richtext.TypeHorizontalRule))
			i++
			continue
		}

		if level, text, ok := atxHeading(line); ok {
			blocks = append(blocks, richtext.NewHeading(level, parseInline(text)...))
			i++
			continue
		}

		if nested {
			if _, ok := quoteContent(line); ok {
				node, next := p.parseBlockquote(lines, i, depth)
				blocks = append(blocks, node)
				i = next
				continue
			}

			if m, ok := listMarker(line); ok {
				if node, next, ok := p.parseList(lines, i, m, depth); ok {
					blocks = append(blocks, node)
					i = next
					continue
				}
				// A bare marker with nothing after it is not a list.
				node, next := parseParagraph(lines, i, true)
				blocks = append(blocks, node)
				i = next
				continue
			}
		}

		node, next := parseParagraph(lines, i, !nested)
		blocks = append(blocks, node)
		i = next
	}
	return blocks
}

// parseParagraph collects lines from start until a blank line or the start
// of another block. With literal set, block starts do not interrupt it.
func parseParagraph(lines []string, start int, literal bool) (*richtext.Node, int) {
	collected := []string{strings.TrimLeft(lines[start], " ")}
	i := start + 1
	for ; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) {
			break
		}
		if !literal && interruptsParagraph(line) {
			break
		}
		collected = append(collected, strings.TrimLeft(line, " "))
	}
	text := strings.TrimRight(strings.Join(collected, "\n"), " \t")
	return richtext.NewParagraph(parseInline(text)...), i
}

// interruptsParagraph reports whether line starts a block that ends an open
// paragraph. Following CommonMark, an ordered list only interrupts when it
// starts at 1 and an empty list item never does.
func interruptsParagraph(line string) bool {
	if _, ok := openFence(line); ok {
		return true
	}
	if isThematicBreak(line) {
		return true
	}
	if _, _, ok := atxHeading(line); ok {
		return true
	}
	if _, ok := quoteContent(line); ok {
		return true
	}
	if m, ok := listMarker(line); ok && m.content != "" {
		return !m.ordered || m.start == 1
	}
	return false
}

func (p *Parser) parseBlockquote(lines []string, start, depth int) (*richtext.Node, int) {
	var inner []string
	i := start
	for ; i < len(lines); i++ {
		line := lines[i]
		if content, ok := quoteContent(line); ok {
			inner = append(inner, content)
			continue
		}
		// Lazy continuation of a paragraph inside the quote.
		if !isBlank(line) && len(inner) > 0 && !isBlank(inner[len(inner)-1]) && !interruptsParagraph(line) {
			inner = append(inner, line)
			continue
		}
		break
	}
	return richtext.NewBlock(richtext.TypeBlockquote, p.parseBlocks(inner, depth+1)...), i
}

// parseList reads a list starting at lines[start]. It reports false when the
// first marker has no content and nothing continues it.
func (p *Parser) parseList(lines []string, start int, first marker, depth int) (*richtext.Node, int, bool) {
	if first.content == "" && !hasContinuation(lines, start+1, first.width) {
		return nil, start, false
	}

	var items []*richtext.Node
	i := start
	for i < len(lines) {
		m, ok := listMarker(lines[i])
		if !ok || !m.sameList(first) || m.indent >= first.width {
			break
		}

		itemLines := []string{m.content}
		i++
		for i < len(lines) {
			line := lines[i]
			if isBlank(line) {
				j := skipBlank(lines, i)
				if j < len(lines) && indentOf(lines[j]) >= m.width {
					for ; i < j; i++ {
						itemLines = append(itemLines, "")
					}
					continue
				}
				break
			}
			if indentOf(line) >= m.width {
				itemLines = append(itemLines, line[m.width:])
				i++
				continue
			}
			last := itemLines[len(itemLines)-1]
			if !isBlank(last) && !interruptsParagraph(line) {
				if _, isMarker := listMarker(line); !isMarker {
					itemLines = append(itemLines, strings.TrimLeft(line, " "))
					i++
					continue
				}
			}
			break
		}

		children := p.parseBlocks(itemLines, depth+1)
		if len(children) == 0 {
			children = []*richtext.Node{emptyParagraph()}
		}
		items = append(items, richtext.NewBlock(richtext.TypeListItem, children...))

		// Blank lines between items keep the list open.
		if i < len(lines) && isBlank(lines[i]) {
			j := skipBlank(lines, i)
			if j < len(lines) {
				if next, ok := listMarker(lines[j]); ok && next.sameList(first) && next.indent < first.width {
					i = j
					continue
				}
			}
			break
		}
	}

	t := richtext.TypeUnorderedList
	if first.ordered {
		t = richtext.TypeOrderedList
	}
	list := richtext.NewBlock(t, items...)
	if first.ordered && first.start != 1 {
		list.Data["start"] = first.start
	}
	return list, i, true
}

func hasContinuation(lines []string, from, width int) bool {
	j := skipBlank(lines, from)
	return j < len(lines) && indentOf(lines[j]) >= width && !isBlank(lines[j])
}

type fence struct {
	char   byte
	length int
	indent int
	info   string
}

func openFence(line string) (fence, bool) {
	indent := indentOf(line)
	if indent > 3 {
		return fence{}, false
	}
	rest := line[indent:]
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return fence{}, false
	}
	n := countRun(rest, rest[0])
	if n < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(rest[n:])
	if rest[0] == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	return fence{char: rest[0], length: n, indent: indent, info: info}, true
}

func closesFence(line string, f fence) bool {
	indent := indentOf(line)
	if indent > 3 {
		return false
	}
	rest := strings.TrimRight(line[indent:], " \t")
	return len(rest) >= f.length && countRun(rest, f.char) == len(rest)
}

// parseFence turns a fenced code block into a paragraph of code-marked text.
// It reports false when the fence is never closed.
func parseFence(lines []string, start int, f fence) (*richtext.Node, int, bool) {
	for end := start + 1; end < len(lines); end++ {
		if !closesFence(lines[end], f) {
			continue
		}
		body := make([]string, 0, end-start-1)
		for _, line := range lines[start+1 : end] {
			body = append(body, stripIndent(line, f.indent))
		}
		text := strings.Join(body, "\n")
		var children []*richtext.Node
		if text != "" {
			children = append(children, richtext.NewText(text, richtext.MarkCode))
		} else {
			children = append(children, richtext.NewText(""))
		}
		return richtext.NewParagraph(children...), end + 1, true
	}
	return nil, start, false
}

func isThematicBreak(line string) bool {
	if indentOf(line) > 3 {
		return false
	}
	var char byte
	count := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			continue
		case c == '-' || c == '*' || c == '_':
			if char != 0 && c != char {
				return false
			}
			char = c
			count++
		default:
			return false
		}
	}
	return count >= 3
}

// atxHeading parses "# text", stripping an optional closing sequence of #s.
func atxHeading(line string) (int, string, bool) {
	indent := indentOf(line)
	if indent > 3 {
		return 0, "", false
	}
	rest := line[indent:]
	level := countRun(rest, '#')
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest = rest[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(rest)
	if trimmed := strings.TrimRight(text, "#"); trimmed == "" {
		text = ""
	} else if len(trimmed) < len(text) && strings.HasSuffix(trimmed, " ") && !strings.HasSuffix(trimmed, "\\ ") {
		text = strings.TrimSpace(trimmed)
	}
	return level, text, true
}

// quoteContent strips a blockquote marker and one optional following space.
func quoteContent(line string) (string, bool) {
	indent := indentOf(line)
	if indent > 3 || indent >= len(line) || line[indent] != '>' {
		return "", false
	}
	rest := line[indent+1:]
	rest = strings.TrimPrefix(rest, " ")
	return rest, true
}

// marker describes a list item marker at the start of a line.
type marker struct {
	indent  int
	ordered bool
	char    byte // '-', '*', '+' for bullets; '.' or ')' for ordered
	start   int
	width   int // column where item content begins
	content string
}

func (m marker) sameList(other marker) bool {
	return m.ordered == other.ordered && m.char == other.char
}

func listMarker(line string) (marker, bool) {
	indent := indentOf(line)
	rest := line[indent:]
	if rest == "" {
		return marker{}, false
	}

	m := marker{indent: indent}
	var markerLen int
	switch c := rest[0]; {
	case c == '-' || c == '*' || c == '+':
		m.char = c
		markerLen = 1
	case c >= '0' && c <= '9':
		digits := 0
		for digits < len(rest) && digits < 9 && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		if digits >= len(rest) || (rest[digits] != '.' && rest[digits] != ')') {
			return marker{}, false
		}
		n, err := strconv.Atoi(rest[:digits])
		if err != nil {
			return marker{}, false
		}
		m.ordered = true
		m.start = n
		m.char = rest[digits]
		markerLen = digits + 1
	default:
		return marker{}, false
	}

	after := rest[markerLen:]
	if after != "" && after[0] != ' ' {
		return marker{}, false
	}
	content := strings.TrimLeft(after, " ")
	spaces := len(after) - len(content)
	switch {
	case content == "":
		spaces = 1
	case spaces > 4:
		// Indented code is not supported; treat the extra space as content.
		spaces = 1
		content = after[1:]
	}
	m.width = indent + markerLen + spaces
	m.content = content
	return m, true
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func stripIndent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && line[i] == ' ' {
		i++
	}
	return line[i:]
}

func skipBlank(lines []string, from int) int {
	for from < len(lines) && isBlank(lines[from]) {
		from++
	}
	return from
}

func countRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}
