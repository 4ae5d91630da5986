// Package markdown parses Markdown text into a rich-text document tree.
//
// Parsing runs in two phases. Block segmentation splits the input into
// headings, paragraphs, lists, blockquotes, code fences and thematic breaks,
// recursing into list items and blockquotes. Inline parsing then scans each
// paragraph or heading once from left to right, matching emphasis and code
// delimiters and producing text nodes that carry the active marks.
//
// The parser never fails. Input it cannot structure is kept as paragraph text.
package markdown

import (
	"strings"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

// DefaultMaxDepth bounds list and blockquote nesting. Deeper content is kept
// as paragraph text.
const DefaultMaxDepth = 32

// Parser converts Markdown to rich-text documents. A Parser has no mutable
// state and is safe for concurrent use.
type Parser struct {
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum list/blockquote nesting depth.
// Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses src with default options.
func Parse(src string) *richtext.Node {
	return New().Parse(src)
}

// Parse converts src into a document. Input without any block yields a
// document holding a single empty paragraph.
func (p *Parser) Parse(src string) *richtext.Node {
	blocks := p.parseBlocks(splitLines(src), 0)
	if len(blocks) == 0 {
		blocks = []*richtext.Node{emptyParagraph()}
	}
	return richtext.NewDocument(blocks...)
}

func emptyParagraph() *richtext.Node {
	return richtext.NewParagraph(richtext.NewText(""))
}

// splitLines normalizes line endings, repairs invalid UTF-8 and expands
// leading tabs so indentation can be measured in spaces.
func splitLines(src string) []string {
	src = strings.ToValidUTF8(src, "�")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = expandLeadingTabs(line)
	}
	return lines
}

func expandLeadingTabs(line string) string {
	if !strings.Contains(leadingSpace(line), "\t") {
		return line
	}
	var sb strings.Builder
	col := 0
	i := 0
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ':
			sb.WriteByte(' ')
			col++
		case '\t':
			n := 4 - col%4
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		default:
			return sb.String() + line[i:]
		}
	}
	return sb.String()
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
