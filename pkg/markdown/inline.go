package markdown

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokDelim
	tokCode
	tokBreak
)

type token struct {
	kind  tokenKind
	value string

	// delimiter fields
	char     byte
	canOpen  bool
	canClose bool
	mark     richtext.MarkType // set once matched
	opener   bool
}

func (t *token) matched() bool { return t.mark != "" }

// parseInline converts the text of a paragraph or heading into text nodes.
// It always returns at least one node.
func parseInline(src string) []*richtext.Node {
	tokens := tokenize(src)
	matchDelimiters(tokens)
	nodes := emit(tokens)
	if len(nodes) == 0 {
		return []*richtext.Node{richtext.NewText("")}
	}
	return nodes
}

func tokenize(src string) []*token {
	var tokens []*token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, &token{kind: tokText, value: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src) && src[i+1] == '\n':
			flush()
			tokens = append(tokens, &token{kind: tokBreak})
			i = skipSpaces(src, i+2)

		case c == '\\' && i+1 < len(src) && isASCIIPunct(src[i+1]):
			text.WriteByte(src[i+1])
			i += 2

		case c == '\n':
			trimmed := strings.TrimRight(text.String(), " ")
			text.Reset()
			text.WriteString(trimmed)
			flush()
			tokens = append(tokens, &token{kind: tokBreak})
			i = skipSpaces(src, i+1)

		case c == '`':
			n := countRun(src[i:], '`')
			if end := closingBackticks(src, i+n, n); end >= 0 {
				flush()
				tokens = append(tokens, &token{kind: tokCode, value: codeContent(src[i+n : end])})
				i = end + n
				continue
			}
			text.WriteString(src[i : i+n])
			i += n

		case c == '*' || c == '_':
			flush()
			n := countRun(src[i:], c)
			before, after := runeBefore(src, i), runeAfter(src, i+n)
			canOpen := !isSpace(after)
			canClose := !isSpace(before)
			if c == '_' && isWordRune(before) && isWordRune(after) {
				// snake_case words are never emphasis
				canOpen, canClose = false, false
			}
			for n > 0 {
				size := min(n, 2)
				tokens = append(tokens, &token{
					kind:     tokDelim,
					value:    src[i : i+size],
					char:     c,
					canOpen:  canOpen,
					canClose: canClose,
				})
				i += size
				n -= size
			}

		case c == '&':
			if n := richtext.EntityLen(src[i:]); n > 0 {
				text.WriteString(html.UnescapeString(src[i : i+n]))
				i += n
				continue
			}
			text.WriteByte(c)
			i++

		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}

// matchDelimiters pairs openers and closers of the same literal ("*", "**",
// "_" or "__"). Each literal is matched independently, so spans of different
// marks may interleave. Unpaired delimiters stay literal text.
func matchDelimiters(tokens []*token) {
	open := make(map[string]*token)
	for _, t := range tokens {
		if t.kind != tokDelim {
			continue
		}
		mark := richtext.MarkItalic
		if len(t.value) == 2 {
			mark = richtext.MarkBold
		}
		if o := open[t.value]; o != nil && t.canClose {
			o.mark, o.opener = mark, true
			t.mark = mark
			delete(open, t.value)
			continue
		}
		if t.canOpen {
			open[t.value] = t
		}
	}
}

func emit(tokens []*token) []*richtext.Node {
	counts := make(map[richtext.MarkType]int)
	active := func() richtext.MarkSet {
		var s richtext.MarkSet
		for m, n := range counts {
			if n > 0 {
				s = s.With(m)
			}
		}
		return s
	}

	var nodes []*richtext.Node
	var last richtext.MarkSet
	add := func(value string, set richtext.MarkSet) {
		if value == "" {
			return
		}
		if len(nodes) > 0 && last == set {
			nodes[len(nodes)-1].Value += value
			return
		}
		nodes = append(nodes, richtext.NewText(value, set.Types()...))
		last = set
	}

	for _, t := range tokens {
		switch t.kind {
		case tokText:
			add(t.value, active())
		case tokBreak:
			add("\n", active())
		case tokCode:
			add(t.value, active().With(richtext.MarkCode))
		case tokDelim:
			switch {
			case !t.matched():
				add(t.value, active())
			case t.opener:
				counts[t.mark]++
			default:
				counts[t.mark]--
			}
		}
	}
	return nodes
}

// closingBackticks finds the next run of exactly n backticks at or after
// from and returns its offset, or -1.
func closingBackticks(src string, from, n int) int {
	for i := from; i < len(src); {
		if src[i] != '`' {
			i++
			continue
		}
		run := countRun(src[i:], '`')
		if run == n {
			return i
		}
		i += run
	}
	return -1
}

// codeContent turns line endings into spaces and strips one surrounding
// space when both ends have one.
func codeContent(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

// runeBefore returns the rune ending at i, or a space at the start of input.
func runeBefore(s string, i int) rune {
	if i == 0 {
		return ' '
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r
}

func runeAfter(s string, i int) rune {
	if i >= len(s) {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}
