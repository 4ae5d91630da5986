package htmlmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// LibraryConverter converts HTML with html-to-markdown. Links are flattened
// before conversion and the output is normalized and escaped the same way as
// the native Transducer's.
type LibraryConverter struct {
	config *Config
	conv   *converter.Converter
}

// NewLibrary creates a LibraryConverter. If cfg is nil, DefaultConfig() is used.
func NewLibrary(cfg *Config) *LibraryConverter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithStrongDelimiter(cfg.StrongDelimiter),
				commonmark.WithEmDelimiter(cfg.EmDelimiter),
				commonmark.WithBulletListMarker(cfg.BulletMarker),
				commonmark.WithHorizontalRule("---"),
			),
			libraryPlugin{strong: cfg.StrongDelimiter, em: cfg.EmDelimiter},
		),
	)
	return &LibraryConverter{config: cfg, conv: conv}
}

// Name returns the engine name.
func (c *LibraryConverter) Name() string {
	return string(EngineLibrary)
}

// ToMarkdown converts html to Markdown.
func (c *LibraryConverter) ToMarkdown(html string) (string, error) {
	result := c.ConvertWithStats(html)
	return result.Content, result.Error
}

// ConvertWithStats converts html and reports what the conversion did.
// Per-element counts are not available from the library.
func (c *LibraryConverter) ConvertWithStats(input string) *Result {
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
	flat, err := doc.Html()
	if err != nil {
		result.Error = fmt.Errorf("render flattened html: %w", err)
		result.Stats.TotalDuration = time.Since(start)
		return result
	}
	markdown, err := c.conv.ConvertString(flat)
	result.Stats.EmitDuration = time.Since(emitStart)
	if err != nil {
		result.Error = fmt.Errorf("converting HTML to markdown: %w", err)
		result.Stats.TotalDuration = time.Since(start)
		return result
	}
	if c.config.NormalizeUnicode {
		markdown = norm.NFC.String(markdown)
	}

	normalizeResult(result, markdown)
	result.Stats.TotalDuration = time.Since(start)
	return result
}
