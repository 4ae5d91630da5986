package htmlmd

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

// libraryPlugin makes html-to-markdown output read back the same way as the
// Transducer's: ampersands that start a character reference are escaped, and
// underscore emphasis touching a word switches to asterisks.
type libraryPlugin struct {
	strong string
	em     string
}

func (p libraryPlugin) Name() string {
	return "richconv"
}

func (p libraryPlugin) Init(conv *converter.Converter) error {
	conv.Register.EscapedChar('&')
	conv.Register.UnEscaper(escapeReferenceAmpersand, converter.PriorityStandard)
	conv.Register.Renderer(p.renderIntraword, converter.PriorityEarly)
	return nil
}

// escapeReferenceAmpersand keeps the escape on an ampersand that would
// otherwise be decoded as a character reference.
func escapeReferenceAmpersand(chars []byte, index int) int {
	if chars[index] != '&' {
		return -1
	}
	end := min(len(chars), index+48)
	ref := bytes.ReplaceAll(chars[index:end], marker.BytesMarkerEscaping, nil)
	if richtext.EntityLen(string(ref)) == 0 {
		return -1
	}
	return 1
}

func (p libraryPlugin) renderIntraword(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if n.Type != html.ElementNode {
		return converter.RenderTryNext
	}
	var delim string
	switch n.DataAtom {
	case atom.Em, atom.I:
		delim = p.em
	case atom.Strong, atom.B:
		delim = p.strong
	default:
		return converter.RenderTryNext
	}
	if !strings.Contains(delim, "_") || !touchesWord(n) {
		return converter.RenderTryNext
	}

	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	content := buf.String()
	if content == "" || strings.Contains(content, "\n") || content != strings.TrimSpace(content) {
		return converter.RenderTryNext
	}

	star := starDelimiter(delim)
	_, _ = w.WriteString(star + content + star)
	return converter.RenderSuccess
}

// touchesWord reports whether n sits directly against a letter or digit in
// a neighboring text node.
func touchesWord(n *html.Node) bool {
	if prev := n.PrevSibling; prev != nil && prev.Type == html.TextNode {
		if r, _ := utf8.DecodeLastRuneInString(prev.Data); isWordRune(r) {
			return true
		}
	}
	if next := n.NextSibling; next != nil && next.Type == html.TextNode {
		if r, _ := utf8.DecodeRuneInString(next.Data); isWordRune(r) {
			return true
		}
	}
	return false
}
