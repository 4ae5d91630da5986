package htmlmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Transducer is the native HTML-to-Markdown converter. It is safe for
// concurrent use: each conversion keeps its state on the stack.
type Transducer struct {
	config *Config
	rules  RuleTable
}

// Option configures a Transducer.
type Option func(*Transducer)

// WithRules replaces the rule table.
func WithRules(rules RuleTable) Option {
	return func(t *Transducer) {
		t.rules = rules
	}
}

// New creates a Transducer. If cfg is nil, DefaultConfig() is used.
func New(cfg *Config, opts ...Option) *Transducer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := &Transducer{config: cfg}
	for _, opt := range opts {
		opt(t)
	}
	if t.rules == nil {
		t.rules = DefaultRules(cfg)
	}
	return t
}

// Name returns the engine name.
func (t *Transducer) Name() string {
	return string(EngineNative)
}

// ToMarkdown converts html to Markdown.
func (t *Transducer) ToMarkdown(html string) (string, error) {
	result := t.ConvertWithStats(html)
	return result.Content, result.Error
}

// ConvertWithStats converts html and reports what the conversion did.
func (t *Transducer) ConvertWithStats(input string) *Result {
	start := time.Now()
	result := &Result{Stats: NewStats()}
	result.Stats.InputBytes = len(input)

	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		result.Error = fmt.Errorf("parse html: %w", err)
		result.Stats.TotalDuration = time.Since(start)
		return result
	}

	flattenStart := time.Now()
	result.Stats.LinksFlattened = flattenLinks(doc)
	result.Stats.FlattenDuration = time.Since(flattenStart)

	emitStart := time.Now()
	w := NewWriter()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	e := &Emitter{config: t.config, rules: t.rules, stats: result.Stats}
	e.Children(w, body)
	result.Stats.EmitDuration = time.Since(emitStart)

	normalizeResult(result, w.String())
	result.Stats.TotalDuration = time.Since(start)
	return result
}

// Emitter walks one parsed document, applying the rule table. A new Emitter
// is used for every conversion.
type Emitter struct {
	config *Config
	rules  RuleTable
	stats  *Stats
}

// Children emits the child nodes of el into w.
func (e *Emitter) Children(w *Writer, el *goquery.Selection) {
	el.Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		switch node.Type {
		case html.TextNode:
			w.Text(e.Text(node.Data))
		case html.ElementNode:
			e.Element(w, s)
		}
	})
}

// Element emits a single element according to its rule.
func (e *Emitter) Element(w *Writer, el *goquery.Selection) {
	node := el.Nodes[0]
	if e.stats != nil {
		e.stats.RecordElement(node.Data)
	}

	rule, ok := e.rules[node.DataAtom]
	if !ok || node.DataAtom == 0 {
		e.Children(w, el)
		return
	}

	switch rule.Kind {
	case RuleSkip:
	case RuleWrap:
		if w.active[rule.Prefix] > 0 {
			e.Children(w, el)
			return
		}
		sub := w.Sub()
		sub.active[rule.Prefix]++
		e.Children(sub, el)
		w.Wrap(rule.Prefix, sub, rule.Suffix)
	case RuleBlock:
		if rule.Prefix == "" && !rule.OneLine {
			w.BlockBreak()
			e.Children(w, el)
			w.BlockBreak()
			return
		}
		sub := w.Sub()
		e.Children(sub, el)
		content := trimBlock(sub.String())
		if rule.OneLine {
			content = oneLine(content)
		}
		if content != "" {
			w.Block(rule.Prefix + content)
		}
	case RuleEmit:
		rule.Emit(e, w, el)
	default:
		e.Children(w, el)
	}
}

// Text applies Unicode normalization when configured.
func (e *Emitter) Text(s string) string {
	if e.config.NormalizeUnicode {
		return norm.NFC.String(s)
	}
	return s
}

// oneLine joins the lines of s with single spaces, dropping hard breaks.
func oneLine(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
