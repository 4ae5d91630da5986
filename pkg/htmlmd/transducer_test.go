package htmlmd

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "emphasis",
			html: `<p>Hello <em>world</em></p>`,
			want: "Hello _world_",
		},
		{
			name: "strong at top level",
			html: `<strong>bold</strong> text`,
			want: "**bold** text",
		},
		{
			name: "link is flattened",
			html: `<p>See <a href="https://example.com">the <b>docs</b></a>.</p>`,
			want: "See the **docs**.",
		},
		{
			name: "whitespace moves outside wrap",
			html: `<strong>a </strong>b`,
			want: "**a** b",
		},
		{
			name: "adjacent wraps merge",
			html: `<em>a</em><em>b</em>`,
			want: "_ab_",
		},
		{
			name: "emphasis before a word uses asterisks",
			html: `<p><em>foo</em>bar</p>`,
			want: "*foo*bar",
		},
		{
			name: "merged emphasis after a word",
			html: `<p>x<em>a</em><em>b</em></p>`,
			want: "x*ab*",
		},
		{
			name: "nested emphasis before a word",
			html: `<p><b><em>foo</em>bar</b></p>`,
			want: "***foo*bar**",
		},
		{
			name: "emphasis before punctuation",
			html: `<p><em>foo</em>.</p>`,
			want: "_foo_.",
		},
		{
			name: "empty wrap emits nothing",
			html: `<strong></strong>x`,
			want: "x",
		},
		{
			name: "nested identical wraps",
			html: `<b><b>x</b></b>`,
			want: "**x**",
		},
		{
			name: "empty strong between strongs",
			html: `<strong>a</strong><strong></strong><strong>b</strong>`,
			want: "**ab**",
		},
		{
			name: "bullet list",
			html: "<ul>\n<li>one</li>\n<li>two</li>\n</ul>",
			want: "- one\n- two",
		},
		{
			name: "nested list",
			html: `<ul><li>a<ul><li>b</li></ul></li></ul>`,
			want: "- a\n  - b",
		},
		{
			name: "ordered list start",
			html: `<ol start="3"><li>x</li><li>y</li></ol>`,
			want: "3. x\n4. y",
		},
		{
			name: "list item paragraphs",
			html: `<ol><li><p>a</p><p>b</p></li></ol>`,
			want: "1. a\n\n   b",
		},
		{
			name: "blockquote",
			html: `<blockquote><p>q1</p><p>q2</p></blockquote>`,
			want: "> q1\n>\n> q2",
		},
		{
			name: "pre with language",
			html: "<pre><code class=\"language-go\">a := 1\n</code></pre>",
			want: "```go\na := 1\n```",
		},
		{
			name: "line break",
			html: `<p>x<br>y</p>`,
			want: "x  \ny",
		},
		{
			name: "heading",
			html: `<h2>Title  <em>here</em></h2>`,
			want: "## Title _here_",
		},
		{
			name: "heading with break stays on one line",
			html: `<h1>a<br>b</h1>`,
			want: "# a b",
		},
		{
			name: "paragraphs",
			html: `<p>one</p><p>two</p>`,
			want: "one\n\ntwo",
		},
		{
			name: "horizontal rule",
			html: `<p>a</p><hr><p>b</p>`,
			want: "a\n\n---\n\nb",
		},
		{
			name: "ordered marker escaped",
			html: `<p>1. not a list</p>`,
			want: `1\. not a list`,
		},
		{
			name: "syntax characters escaped",
			html: `<p>a*b_c</p>`,
			want: `a\*b\_c`,
		},
		{
			name: "entities decoded",
			html: `<p>Tom &amp; Jerry &lt;3</p>`,
			want: "Tom & Jerry <3",
		},
		{
			name: "ampersand before a reference",
			html: `<p>Tom&amp;Jerry &amp;amp; co</p>`,
			want: `Tom&Jerry \&amp; co`,
		},
		{
			name: "scripts skipped",
			html: `<p>y</p><script>var x = 1;</script><noscript>no</noscript>`,
			want: "y",
		},
		{
			name: "image alt text",
			html: `<p><img src="cat.png" alt="A cat"> here</p>`,
			want: "A cat here",
		},
		{
			name: "table cells",
			html: `<table><tr><td>a</td><td>b</td></tr><tr><td>c</td></tr></table>`,
			want: "a b\n\nc",
		},
		{
			name: "empty blocks",
			html: `<p>   </p><div></div><p>x</p>`,
			want: "x",
		},
		{
			name: "unknown elements pass through",
			html: `<div>unknown <custom-tag>kept</custom-tag></div>`,
			want: "unknown kept",
		},
		{
			name: "inline code",
			html: `<p>run <code>a  b</code> now</p>`,
			want: "run `a b` now",
		},
		{
			name: "non-breaking space is content",
			html: `<p>a&nbsp;b</p>`,
			want: "a\u00a0b",
		},
		{
			name: "empty input",
			html: ``,
			want: "",
		},
	}

	c := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ToMarkdown(tt.html)
			if err != nil {
				t.Fatalf("ToMarkdown() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToMarkdown()\n got: %q\nwant: %q", got, tt.want)
			}
			if strings.Contains(got, "****") {
				t.Errorf("output contains ****: %q", got)
			}
		})
	}
}

func TestToMarkdownUnicodeNormalization(t *testing.T) {
	decomposed := "<p>cafe\u0301</p>"

	got, err := New(nil).ToMarkdown(decomposed)
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	if got != "caf\u00e9" {
		t.Errorf("expected NFC output, got %q", got)
	}

	cfg := DefaultConfig()
	cfg.NormalizeUnicode = false
	got, _ = New(cfg).ToMarkdown(decomposed)
	if got != "cafe\u0301" {
		t.Errorf("expected untouched output, got %q", got)
	}
}

func TestToMarkdownConfigDelimiters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrongDelimiter = "__"
	cfg.EmDelimiter = "*"
	cfg.BulletMarker = "*"

	got, err := New(cfg).ToMarkdown(`<p><b>a</b> <i>b</i></p><ul><li>c</li></ul>`)
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	want := "__a__ *b*\n\n* c"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWithRules(t *testing.T) {
	rules := DefaultRules(DefaultConfig())
	rules[atom.Mark] = Rule{Kind: RuleWrap, Prefix: "**", Suffix: "**"}
	rules[atom.Aside] = Rule{Kind: RuleSkip}

	got, err := New(nil, WithRules(rules)).ToMarkdown(`<p>a <mark>b</mark></p><aside>hidden</aside>`)
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	if got != "a **b**" {
		t.Errorf("got %q, want %q", got, "a **b**")
	}
}

func TestCustomEmitter(t *testing.T) {
	rules := DefaultRules(DefaultConfig())
	rules[atom.Kbd] = Rule{Kind: RuleEmit, Emit: func(e *Emitter, w *Writer, el *goquery.Selection) {
		w.Raw("[" + el.Text() + "]")
	}}

	got, _ := New(nil, WithRules(rules)).ToMarkdown(`<p>press <kbd>Ctrl</kbd></p>`)
	if got != "press [Ctrl]" {
		t.Errorf("got %q", got)
	}
}

func TestFlattenLinks(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		want  string
		links int
	}{
		{
			name:  "multi-line tag with single quotes",
			html:  "<p><a\n  href='x'\n  class=\"y\">link text</a></p>",
			want:  "link text",
			links: 1,
		},
		{
			name:  "empty anchor",
			html:  `<p>a<a href="x"></a>b</p>`,
			want:  "ab",
			links: 1,
		},
		{
			name:  "anchor around block",
			html:  `<a href="x"><p>one</p><p>two</p></a>`,
			want:  "one\n\ntwo",
			links: 1,
		},
		{
			name:  "several anchors",
			html:  `<p><a href="1">a</a> and <a href="2"><em>b</em></a></p>`,
			want:  "a and _b_",
			links: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(nil).ConvertWithStats(tt.html)
			if result.Error != nil {
				t.Fatalf("ConvertWithStats() error = %v", result.Error)
			}
			if result.Content != tt.want {
				t.Errorf("got %q, want %q", result.Content, tt.want)
			}
			if result.Stats.LinksFlattened != tt.links {
				t.Errorf("LinksFlattened = %d, want %d", result.Stats.LinksFlattened, tt.links)
			}
			if result.Stats.ElementsSeen["a"] != 0 {
				t.Error("anchors should not reach emission")
			}
		})
	}
}

func TestName(t *testing.T) {
	if New(nil).Name() != "native" {
		t.Errorf("expected name 'native', got %q", New(nil).Name())
	}
	if NewLibrary(nil).Name() != "library" {
		t.Errorf("expected name 'library', got %q", NewLibrary(nil).Name())
	}
}
