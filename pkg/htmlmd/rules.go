package htmlmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"github.com/jmylchreest/richconv/pkg/richtext"
)

// RuleKind says how an element is emitted.
type RuleKind int

const (
	// RulePass emits the element's children with no markup of its own.
	RulePass RuleKind = iota
	// RuleWrap surrounds inline content with Prefix and Suffix.
	RuleWrap
	// RuleBlock puts the content on its own block. Prefix, if set, starts the
	// block and OneLine joins the content onto a single line.
	RuleBlock
	// RuleSkip drops the element and everything inside it.
	RuleSkip
	// RuleEmit hands the element to Emit.
	RuleEmit
)

// EmitFunc writes the Markdown for one element.
type EmitFunc func(e *Emitter, w *Writer, el *goquery.Selection)

// Rule describes the Markdown emitted for one element type.
type Rule struct {
	Kind    RuleKind
	Prefix  string
	Suffix  string
	OneLine bool
	Emit    EmitFunc
}

// RuleTable maps element atoms to rules. Elements without an entry pass
// their children through.
type RuleTable map[atom.Atom]Rule

// DefaultRules returns the rule table for cfg.
func DefaultRules(cfg *Config) RuleTable {
	strong := Rule{Kind: RuleWrap, Prefix: cfg.StrongDelimiter, Suffix: cfg.StrongDelimiter}
	em := Rule{Kind: RuleWrap, Prefix: cfg.EmDelimiter, Suffix: cfg.EmDelimiter}
	block := Rule{Kind: RuleBlock}
	skip := Rule{Kind: RuleSkip}
	list := Rule{Kind: RuleEmit, Emit: emitList}

	rules := RuleTable{
		atom.Strong: strong,
		atom.B:      strong,
		atom.Em:     em,
		atom.I:      em,

		atom.Code: {Kind: RuleEmit, Emit: emitCode},
		atom.Pre:  {Kind: RuleEmit, Emit: emitPre},

		atom.Ul:         list,
		atom.Ol:         list,
		atom.Blockquote: {Kind: RuleEmit, Emit: emitBlockquote},

		atom.Br:  {Kind: RuleEmit, Emit: func(_ *Emitter, w *Writer, _ *goquery.Selection) { w.HardBreak() }},
		atom.Hr:  {Kind: RuleEmit, Emit: func(_ *Emitter, w *Writer, _ *goquery.Selection) { w.Block("---") }},
		atom.Img: {Kind: RuleEmit, Emit: emitImage},
		atom.Td:  {Kind: RuleEmit, Emit: emitCell},
		atom.Th:  {Kind: RuleEmit, Emit: emitCell},
	}

	for level, a := range []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6} {
		rules[a] = Rule{Kind: RuleBlock, Prefix: strings.Repeat("#", level+1) + " ", OneLine: true}
	}

	for _, a := range []atom.Atom{
		atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header,
		atom.Footer, atom.Aside, atom.Figure, atom.Figcaption, atom.Address,
		atom.Table, atom.Tr, atom.Dl, atom.Dt, atom.Dd,
	} {
		rules[a] = block
	}

	for _, a := range []atom.Atom{
		atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head,
		atom.Iframe, atom.Svg, atom.Object,
	} {
		rules[a] = skip
	}

	return rules
}

// emitList writes ul and ol elements. Item content is indented by the width
// of its marker; a list directly inside a list item follows the item's text
// on the next line.
func emitList(e *Emitter, w *Writer, el *goquery.Selection) {
	ordered := goquery.NodeName(el) == "ol"
	start := 1
	if v, ok := el.Attr("start"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			start = n
		}
	}

	var items []string
	n := 0
	el.Children().Each(func(_ int, child *goquery.Selection) {
		sub := w.Sub()
		sub.inItem = true
		if goquery.NodeName(child) == "li" {
			e.Children(sub, child)
		} else {
			e.Element(sub, child)
		}
		content := trimBlock(sub.String())

		marker := e.config.BulletMarker + " "
		if ordered {
			marker = fmt.Sprintf("%d. ", start+n)
		}
		n++
		if content == "" {
			return
		}
		items = append(items, marker+indentContinuation(content, len(marker)))
	})
	if len(items) == 0 {
		return
	}

	if w.inItem && !w.Empty() && w.breaks < 2 {
		w.LineBreak()
	} else {
		w.BlockBreak()
	}
	w.Raw(strings.Join(items, "\n"))
	w.BlockBreak()
}

func emitBlockquote(e *Emitter, w *Writer, el *goquery.Selection) {
	sub := w.Sub()
	e.Children(sub, el)
	if content := trimBlock(sub.String()); content != "" {
		w.Block(prefixLines(content))
	}
}

// emitCode writes inline code. Inside pre the text is written by emitPre.
func emitCode(e *Emitter, w *Writer, el *goquery.Selection) {
	text := e.Text(el.Text())
	if strings.TrimFunc(text, isHTMLSpace) == "" {
		if text != "" {
			w.Space()
		}
		return
	}
	if isHTMLSpace(rune(text[0])) {
		w.Space()
	}
	w.Raw(richtext.CodeSpan(strings.Join(strings.FieldsFunc(text, isHTMLSpace), " ")))
	if isHTMLSpace(rune(text[len(text)-1])) {
		w.Space()
	}
}

func emitPre(e *Emitter, w *Writer, el *goquery.Selection) {
	text := strings.TrimPrefix(e.Text(el.Text()), "\n")
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}

	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	lang := ""
	if class, ok := el.Find("code").First().Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if l, found := strings.CutPrefix(c, "language-"); found {
				lang = l
				break
			}
		}
	}
	w.Block(fence + lang + "\n" + text + "\n" + fence)
}

// emitImage writes the alt text. The source is discarded like link targets.
func emitImage(e *Emitter, w *Writer, el *goquery.Selection) {
	if alt, ok := el.Attr("alt"); ok {
		w.Text(e.Text(alt))
	}
}

func emitCell(e *Emitter, w *Writer, el *goquery.Selection) {
	w.Space()
	e.Children(w, el)
	w.Space()
}
